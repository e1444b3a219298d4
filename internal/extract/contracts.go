package extract

import (
	"context"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/reader"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/recipe"
)

// Request carries one file's prepared content into an extraction call.
type Request struct {
	Content  reader.Content
	FileName string
}

// RecipeExtractor is the interface the processing loop depends on. The
// raw JSON returned alongside the parsed recipe is the model output
// before unmarshalling, kept for logging and debugging.
type RecipeExtractor interface {
	Extract(ctx context.Context, req Request) (recipe.Recipe, []byte, error)
}
