package recipe

// Recipe is the structured extraction result and the unit of review and export.
// JSON tags define both the AI response contract and the downloaded-file shape.
type Recipe struct {
	Name             string       `json:"name"`
	Description      string       `json:"description,omitempty"`
	Servings         int          `json:"servings,omitempty"`
	PrepTimeMinutes  int          `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes  int          `json:"cook_time_minutes,omitempty"`
	Ingredients      []Ingredient `json:"ingredients"`
	Steps            []Step       `json:"steps"`
	Keywords         []string     `json:"keywords,omitempty"`
	OriginalFileName string       `json:"original_file_name,omitempty"`
}

// Ingredient keeps the amount as free text: sources write "1/2", "a pinch"
// or nothing at all, and that fidelity survives until export.
type Ingredient struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Name   string `json:"name"`
	Note   string `json:"note,omitempty"`
}

// Step is one instruction; ordering is the slice position.
type Step struct {
	Instruction string `json:"instruction"`
}

// EnsureLists replaces nil collections with empty ones. The review form and
// the export mapper iterate these without nil checks.
func (r *Recipe) EnsureLists() {
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	if r.Steps == nil {
		r.Steps = []Step{}
	}
	if r.Keywords == nil {
		r.Keywords = []string{}
	}
}

// Clone returns a deep copy, so working copies and snapshots never alias
// queue-held state.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = make([]Ingredient, len(r.Ingredients))
	copy(out.Ingredients, r.Ingredients)
	out.Steps = make([]Step, len(r.Steps))
	copy(out.Steps, r.Steps)
	out.Keywords = make([]string, len(r.Keywords))
	copy(out.Keywords, r.Keywords)
	return out
}
