// extract runs the AI extraction once for a single recipe file and
// prints the resulting record as JSON, for smoke-testing the contract
// without the service.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/common"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/export"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/extract"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/extract/openai"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/reader"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/reader/doctext"
)

func main() {
	_ = godotenv.Load()

	// Logs go to stderr so the extracted JSON on stdout stays pipeable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage: extract <recipe-file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()

	content, err := reader.New(doctext.New()).Read(path, filepath.Base(path), "")
	if err != nil {
		logger.Error("read source file", "path", path, "err", err)
		os.Exit(1)
	}

	client := openai.NewClient(openai.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	}, logger)

	start := time.Now()
	rec, _, err := client.Extract(context.Background(), extract.Request{
		Content:  content,
		FileName: filepath.Base(path),
	})
	if err != nil {
		logger.Error("extract failed", "path", path, "err", err)
		os.Exit(1)
	}
	logger.Info("extract.ok", "recipe", rec.Name, "elapsed_ms", time.Since(start).Milliseconds())

	if err := export.WriteRecipeJSON(os.Stdout, rec); err != nil {
		logger.Error("write result", "err", err)
		os.Exit(1)
	}
}
