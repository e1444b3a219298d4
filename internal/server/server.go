// Package server exposes the migration queue, the review form and the
// export paths as a JSON HTTP API for the browser frontend.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/export"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/queue"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/review"
)

// RecipeUploader posts a mapped recipe to the target Tandoor instance.
type RecipeUploader interface {
	Upload(ctx context.Context, payload export.TandoorRecipe) error
}

// Server wires the queue store, the batch runner, the review session and
// the Tandoor client into HTTP handlers.
type Server struct {
	store   *queue.Store
	runner  *queue.Runner
	session *review.Session
	tandoor RecipeUploader
	dataDir string
	logger  *slog.Logger
}

func New(store *queue.Store, runner *queue.Runner, session *review.Session, tandoor RecipeUploader, dataDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:   store,
		runner:  runner,
		session: session,
		tandoor: tandoor,
		dataDir: dataDir,
		logger:  logger,
	}
}

// Routes registers every endpoint on the router.
func (s *Server) Routes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	{
		q := api.Group("/queue")
		{
			q.POST("/files", s.handleUploadFiles)
			q.POST("/process", s.handleStartBatch)
			q.GET("", s.handleListQueue)
			q.GET("/:id", s.handleGetItem)
			q.GET("/:id/preview", s.handlePreview)
		}

		rev := api.Group("/review")
		{
			rev.GET("", s.handleReviewForm)
			rev.PUT("", s.handleUpdateFields)
			rev.POST("/select", s.handleSelect)
			rev.POST("/ingredients", s.handleAddIngredient)
			rev.PUT("/ingredients/:index", s.handleUpdateIngredient)
			rev.POST("/steps", s.handleAddStep)
			rev.PUT("/steps/:index", s.handleUpdateStep)
			rev.POST("/keywords", s.handleAddKeyword)
			rev.PUT("/keywords/:index", s.handleUpdateKeyword)
			rev.DELETE("/keywords/:index", s.handleRemoveKeyword)
			rev.POST("/confirm", s.handleConfirm)
			rev.POST("/cancel", s.handleCancel)
		}

		// Per-item routes live under a static "items" segment: gin's
		// routing tree rejects a param sharing a level with static
		// siblings like /json and /xlsx.
		exp := api.Group("/export")
		{
			exp.GET("/json", s.handleDownloadAll)
			exp.GET("/xlsx", s.handleDownloadXLSX)
			exp.GET("/items/:id/json", s.handleDownloadOne)
			exp.POST("/items/:id/tandoor", s.handleUploadTandoor)
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "tandoor-recipe-migration",
	})
}

// uploadsDir is where raw uploaded files are spooled.
func (s *Server) uploadsDir() string {
	return filepath.Join(s.dataDir, "uploads")
}

// previewsDir holds lazily generated image thumbnails.
func (s *Server) previewsDir() string {
	return filepath.Join(s.dataDir, "previews")
}

func jsonError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
