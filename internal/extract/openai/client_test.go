package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/common"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/extract"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/reader"
)

func completionResponse(t *testing.T, recipeJSON map[string]any) []byte {
	t.Helper()
	content, err := json.Marshal(recipeJSON)
	if err != nil {
		t.Fatal(err)
	}
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": string(content)}},
		},
	}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func textRequest(text string) extract.Request {
	return extract.Request{
		Content:  reader.Content{Text: text, MimeType: "text/plain"},
		FileName: "recipe.txt",
	}
}

func TestExtractParsesRecipe(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write(completionResponse(t, map[string]any{
			"name":        "Pancakes",
			"ingredients": []map[string]any{{"amount": "2", "unit": "cups", "name": "flour"}},
			"steps":       []map[string]any{{"instruction": "Mix."}, {"instruction": "Bake."}},
		}))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	got, raw, err := c.Extract(context.Background(), textRequest("2 cups flour. Mix. Bake."))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Name != "Pancakes" {
		t.Errorf("Name = %q", got.Name)
	}
	if len(got.Ingredients) != 1 || got.Ingredients[0].Name != "flour" {
		t.Errorf("Ingredients = %+v", got.Ingredients)
	}
	if len(got.Steps) != 2 || got.Steps[0].Instruction != "Mix." {
		t.Errorf("Steps = %+v", got.Steps)
	}
	if got.Keywords == nil {
		t.Error("Keywords should be an empty list, not nil")
	}
	if !strings.Contains(string(raw), "Pancakes") {
		t.Error("raw JSON should carry the model output")
	}

	rf, ok := gotBody["response_format"].(map[string]any)
	if !ok || rf["type"] != "json_schema" {
		t.Errorf("response_format = %v, want json_schema mode", gotBody["response_format"])
	}
	msgs := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	userContent, _ := json.Marshal(msgs[1])
	if !strings.Contains(string(userContent), "BEGIN RECIPE TEXT") {
		t.Error("text request should embed the marker block")
	}
}

func TestExtractAttachesImage(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write(completionResponse(t, map[string]any{
			"name": "Foto", "ingredients": []any{}, "steps": []any{},
		}))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	req := extract.Request{
		Content:  reader.Content{Data: "aWJzZW4=", MimeType: "image/jpeg"},
		FileName: "foto.jpg",
	}
	if _, _, err := c.Extract(context.Background(), req); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	userContent, _ := json.Marshal(gotBody["messages"].([]any)[1])
	if !strings.Contains(string(userContent), "image_url") {
		t.Error("image request should carry an image_url part")
	}
	if !strings.Contains(string(userContent), "data:image/jpeg;base64,aWJzZW4=") {
		t.Error("image part should embed the data URL")
	}
}

func TestExtractAttachesPDFAsFile(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write(completionResponse(t, map[string]any{
			"name": "PDF", "ingredients": []any{}, "steps": []any{},
		}))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	req := extract.Request{
		Content:  reader.Content{Data: "JVBERi0=", MimeType: "application/pdf"},
		FileName: "menu.pdf",
	}
	if _, _, err := c.Extract(context.Background(), req); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	userContent, _ := json.Marshal(gotBody["messages"].([]any)[1])
	if !strings.Contains(string(userContent), `"file_data"`) {
		t.Error("pdf request should carry a file part")
	}
	if !strings.Contains(string(userContent), "menu.pdf") {
		t.Error("file part should carry the original filename")
	}
}

func TestExtractMissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	_, _, err := c.Extract(context.Background(), textRequest("x"))
	if err == nil {
		t.Fatal("expected error without API key")
	}
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error should wrap ErrMissingAPIKey, got %v", err)
	}
	if f, ok := common.AsFailure(err); !ok || f.Kind != common.FailureExtraction {
		t.Errorf("error should be an extraction failure, got %v", err)
	}
	if calls != 0 {
		t.Errorf("no request must be sent without a key, got %d", calls)
	}
}

func TestExtractServerErrorNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	_, _, err := c.Extract(context.Background(), textRequest("x"))
	if err == nil {
		t.Fatal("expected error on 503")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should mention the status, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want exactly 1 (no retries)", calls)
	}
}

func TestExtractEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	_, _, err := c.Extract(context.Background(), textRequest("x"))
	if err == nil {
		t.Fatal("expected error on empty content")
	}
	if f, ok := common.AsFailure(err); !ok || f.Kind != common.FailureExtraction {
		t.Errorf("error should be an extraction failure, got %v", err)
	}
}

func TestExtractNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	_, _, err := c.Extract(context.Background(), textRequest("x"))
	if err == nil {
		t.Fatal("expected error on a response without choices")
	}
	if f, ok := common.AsFailure(err); !ok || f.Kind != common.FailureExtraction {
		t.Errorf("error should be an extraction failure, got %v", err)
	}
}

func TestExtractNonConformingContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Valid JSON, but no "name" and ingredients of the wrong shape.
		w.Write(completionResponse(t, map[string]any{
			"ingredients": "flour", "steps": []any{},
		}))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	_, _, err := c.Extract(context.Background(), textRequest("x"))
	if err == nil {
		t.Fatal("expected schema validation error")
	}
	if !strings.Contains(err.Error(), "schema") {
		t.Errorf("error should mention the schema, got %v", err)
	}
}
