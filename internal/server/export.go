package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AlexViridi/TandoorRecipeMigration/constants"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/common"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/export"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/queue"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/recipe"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleDownloadOne serves one confirmed recipe as a JSON file in the
// internal record shape.
func (s *Server) handleDownloadOne(c *gin.Context) {
	it, ok := s.completedItem(c)
	if !ok {
		return
	}
	setDownloadHeaders(c, export.FileName(*it.Recipe), "application/json")
	c.Status(http.StatusOK)
	if err := export.WriteRecipeJSON(c.Writer, *it.Recipe); err != nil {
		s.logger.Error("export.download.write_failed", "item_id", it.ID, "error", err)
	}
}

// handleDownloadAll serves every confirmed recipe as one JSON array.
func (s *Server) handleDownloadAll(c *gin.Context) {
	completed := s.store.Completed()
	recs := make([]recipe.Recipe, 0, len(completed))
	for _, it := range completed {
		if it.Recipe != nil {
			recs = append(recs, *it.Recipe)
		}
	}
	setDownloadHeaders(c, export.AllFileName(), "application/json")
	c.Status(http.StatusOK)
	if err := export.WriteAllRecipesJSON(c.Writer, recs); err != nil {
		s.logger.Error("export.download.write_failed", "error", err)
	}
}

// handleDownloadXLSX serves the migration summary workbook covering
// every queue item and its outcome.
func (s *Server) handleDownloadXLSX(c *gin.Context) {
	b, err := export.BuildSummaryXLSX(s.store.Snapshot(), s.logger)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "error", err)
		jsonError(c, http.StatusInternalServerError, "workbook generation failed")
		return
	}
	setDownloadHeaders(c, "migration-summary.xlsx", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, b)
}

// handleUploadTandoor maps one confirmed recipe to the Tandoor payload
// and posts it. Failures pass the upstream detail through and leave the
// item untouched.
func (s *Server) handleUploadTandoor(c *gin.Context) {
	it, ok := s.completedItem(c)
	if !ok {
		return
	}
	payload := export.ToTandoorPayload(*it.Recipe)
	if err := s.tandoor.Upload(c.Request.Context(), payload); err != nil {
		msg := err.Error()
		if f, ok := common.AsFailure(err); ok {
			msg = f.Message
		}
		jsonError(c, http.StatusBadGateway, msg)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// completedItem resolves the :id param to a COMPLETED item carrying a
// confirmed recipe, writing the error response itself otherwise.
func (s *Server) completedItem(c *gin.Context) (queue.Item, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid item id")
		return queue.Item{}, false
	}
	it, ok := s.store.Get(id)
	if !ok {
		jsonError(c, http.StatusNotFound, "item not found")
		return queue.Item{}, false
	}
	if it.Status != constants.StatusCompleted || it.Recipe == nil {
		jsonError(c, http.StatusConflict, "only completed items can be exported")
		return queue.Item{}, false
	}
	return it, true
}

func setDownloadHeaders(c *gin.Context, filename, contentType string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", filename, url.PathEscape(filename)))
	c.Header("Cache-Control", "no-store")
}
