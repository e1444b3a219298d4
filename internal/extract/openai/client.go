package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/common"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/extract"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/recipe"
)

// ErrMissingAPIKey is returned when extraction is attempted without a
// configured credential. Uploading and queueing work without one, so
// this is checked per call rather than at startup.
var ErrMissingAPIKey = errors.New("missing OpenAI API key")

// Extract implements extract.RecipeExtractor using chat/completions
// with the structured-output response format. One request per call, no
// retries; a failed item stays failed until the user re-uploads it.
func (c *Client) Extract(ctx context.Context, req extract.Request) (recipe.Recipe, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.APIKey == "" {
		c.log.Error("extract.missing_api_key", "req_id", rid, "file", req.FileName)
		return recipe.Recipe{}, nil, common.NewExtractionFailure("OpenAI API key is not configured", ErrMissingAPIKey)
	}

	c.log.Info("extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"file", req.FileName,
		"is_text", req.Content.IsText(),
		"mime_type", req.Content.MimeType,
	)

	schema := extract.BuildRecipeJSONSchema()
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "recipe",
				"schema": schema,
			},
		},
		"messages": []map[string]any{
			{"role": "system", "content": extract.BuildSystemPrompt()},
			{"role": "user", "content": userParts(req)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := common.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("extract.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		msg := "AI request failed"
		if status != 0 {
			msg = fmt.Sprintf("AI service returned status %d", status)
		}
		return recipe.Recipe{}, raw, common.NewExtractionFailure(msg, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return recipe.Recipe{}, raw, common.NewExtractionFailure("cannot decode AI response", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return recipe.Recipe{}, raw, common.NewExtractionFailure("AI response contains no choices", nil)
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if content == "" {
		c.log.Error("extract.empty_content",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return recipe.Recipe{}, raw, common.NewExtractionFailure("AI response content is empty", nil)
	}
	rawContent := []byte(content)

	if err := extract.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		c.log.Error("extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", content,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return recipe.Recipe{}, rawContent, common.NewExtractionFailure("AI response does not match the recipe schema", err)
	}

	var out recipe.Recipe
	if err := json.Unmarshal(rawContent, &out); err != nil {
		c.log.Error("extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return recipe.Recipe{}, rawContent, common.NewExtractionFailure("cannot parse AI response into a recipe", err)
	}
	out.EnsureLists()

	c.log.Info("extract.ok",
		"req_id", rid,
		"name", out.Name,
		"ingredients", len(out.Ingredients),
		"steps", len(out.Steps),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

// userParts assembles the user message content. Text sources travel as
// one text part; binary sources add an attachment part after the text,
// images as image_url and everything else as a file.
func userParts(req extract.Request) []map[string]any {
	parts := []map[string]any{
		{"type": "text", "text": extract.BuildUserText(req.Content, req.FileName)},
	}
	if req.Content.IsText() {
		return parts
	}
	if strings.HasPrefix(req.Content.MimeType, "image/") {
		return append(parts, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": req.Content.DataURL()},
		})
	}
	return append(parts, map[string]any{
		"type": "file",
		"file": map[string]any{
			"filename":  req.FileName,
			"file_data": req.Content.DataURL(),
		},
	})
}
