package export

import (
	"encoding/json"
	"io"
	"strings"
	"unicode"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/recipe"
)

// FileName derives the download name for one recipe from its name,
// falling back to a literal when the name is empty.
func FileName(rec recipe.Recipe) string {
	base := strings.TrimSpace(rec.Name)
	if base == "" {
		base = "recipe"
	}
	return sanitizeFileName(base) + ".json"
}

// AllFileName is the download name for the combined export.
func AllFileName() string {
	return "recipes.json"
}

// WriteRecipeJSON writes the internal recipe shape, pretty-printed.
// This is deliberately NOT the Tandoor payload: the JSON download
// preserves the unmapped record, original_file_name included.
func WriteRecipeJSON(w io.Writer, rec recipe.Recipe) error {
	return writeIndented(w, rec)
}

// WriteAllRecipesJSON writes an array of internal recipes.
func WriteAllRecipesJSON(w io.Writer, recs []recipe.Recipe) error {
	if recs == nil {
		recs = []recipe.Recipe{}
	}
	return writeIndented(w, recs)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// sanitizeFileName keeps letters and digits of any script and turns
// everything else into underscores.
func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
