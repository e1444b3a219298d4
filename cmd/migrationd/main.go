// migrationd is the recipe migration service: it accepts recipe source
// uploads, runs the sequential extraction batch, serves the review form
// and exports confirmed recipes as files or into a Tandoor instance.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/common"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/export"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/extract/openai"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/queue"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/reader"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/reader/doctext"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/review"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid configuration", err)
	}
	if err := os.MkdirAll(filepath.Join(cfg.Server.DataDir, "uploads"), 0o755); err != nil {
		fatal(logger, "create data directory", err, "data_dir", cfg.Server.DataDir)
	}

	store := queue.NewStore()
	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	}, logger)
	runner := queue.NewRunner(store, reader.New(doctext.New()), extractor, logger)
	session := review.NewSession(store)
	tandoor := export.NewClient(export.Config{
		BaseURL: cfg.Tandoor.BaseURL,
		Token:   cfg.Tandoor.Token,
	}, logger)

	srv := server.New(store, runner, session, tandoor, cfg.Server.DataDir, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsCfg))

	srv.Routes(router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		logger.Info("http.listen", "addr", cfg.Server.Addr, "model", cfg.AI.Model)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "http server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http.shutdown_error", "err", err)
	}
	runner.Shutdown(shutdownCtx)

	// Queue state lives for the process only; spooled files go with it.
	for _, sub := range []string{"uploads", "previews"} {
		if err := os.RemoveAll(filepath.Join(cfg.Server.DataDir, sub)); err != nil {
			logger.Warn("cleanup failed", "dir", sub, "err", err)
		}
	}
	logger.Info("stopped")
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}
