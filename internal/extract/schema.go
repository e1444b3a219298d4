package extract

// BuildRecipeJSONSchema returns a JSON-Schema (draft 2020-12 subset) as
// a generic map. It is passed to the AI service as a structured output
// constraint and also used locally to validate the response.
func BuildRecipeJSONSchema() map[string]any {
	ingredient := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"amount": map[string]any{"type": "string"},
			"unit":   map[string]any{"type": "string"},
			"name":   map[string]any{"type": "string", "minLength": 1},
			"note":   map[string]any{"type": "string"},
		},
		"required": []string{"name"},
	}

	step := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"instruction": map[string]any{"type": "string"},
		},
		"required": []string{"instruction"},
	}

	props := map[string]any{
		"name":              map[string]any{"type": "string", "minLength": 1},
		"description":       map[string]any{"type": "string"},
		"servings":          map[string]any{"type": "integer", "minimum": 0},
		"prep_time_minutes": map[string]any{"type": "integer", "minimum": 0},
		"cook_time_minutes": map[string]any{"type": "integer", "minimum": 0},
		"ingredients":       map[string]any{"type": "array", "items": ingredient},
		"steps":             map[string]any{"type": "array", "items": step},
		"keywords":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"name", "ingredients", "steps"},
	}
}
