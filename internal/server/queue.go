package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AlexViridi/TandoorRecipeMigration/constants"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/queue"
)

// previewBox bounds generated image thumbnails.
const previewBox = 480

// handleUploadFiles spools every uploaded file and appends a PENDING
// queue item per file. Uploading never starts processing.
func (s *Server) handleUploadFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		jsonError(c, http.StatusBadRequest, "expected multipart/form-data with at least one file")
		return
	}
	defer form.RemoveAll()

	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["files[]"]
	}
	if len(files) == 0 {
		jsonError(c, http.StatusBadRequest, "no files in upload")
		return
	}

	if err := os.MkdirAll(s.uploadsDir(), 0o755); err != nil {
		s.logger.Error("queue.upload.spool_dir_failed", "dir", s.uploadsDir(), "error", err)
		jsonError(c, http.StatusInternalServerError, "could not store uploaded files")
		return
	}

	// Spool everything first so a disk failure adds nothing to the queue.
	spooled := make([]string, 0, len(files))
	for _, fh := range files {
		dst := filepath.Join(s.uploadsDir(), uuid.New().String()+strings.ToLower(filepath.Ext(fh.Filename)))
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			s.logger.Error("queue.upload.spool_failed", "file", fh.Filename, "error", err)
			for _, p := range spooled {
				_ = os.Remove(p)
			}
			jsonError(c, http.StatusInternalServerError, "could not store uploaded files")
			return
		}
		spooled = append(spooled, dst)
	}

	items := make([]queue.Item, 0, len(files))
	for i, fh := range files {
		it := s.store.Add(fh.Filename, spooled[i], fh.Header.Get("Content-Type"), fh.Size)
		items = append(items, it)
	}

	s.logger.Info("queue.upload.ok", "count", len(items))
	c.JSON(http.StatusCreated, gin.H{"items": viewsOf(items)})
}

// handleStartBatch kicks off one sequential run over the items that are
// PENDING right now.
func (s *Server) handleStartBatch(c *gin.Context) {
	n, err := s.runner.StartBatch()
	switch {
	case errors.Is(err, queue.ErrBatchRunning):
		jsonError(c, http.StatusConflict, "batch already running")
		return
	case errors.Is(err, queue.ErrClosed):
		jsonError(c, http.StatusServiceUnavailable, "queue is shut down")
		return
	case err != nil:
		s.logger.Error("queue.batch.start_failed", "error", err)
		jsonError(c, http.StatusInternalServerError, "could not start batch")
		return
	}

	s.logger.Info("queue.batch.accepted", "scheduled", n)
	c.JSON(http.StatusAccepted, gin.H{"scheduled": n})
}

func (s *Server) handleListQueue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":      viewsOf(s.store.Snapshot()),
		"processing": s.runner.Busy(),
	})
}

func (s *Server) handleGetItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid item id")
		return
	}
	it, ok := s.store.Get(id)
	if !ok {
		jsonError(c, http.StatusNotFound, "item not found")
		return
	}
	c.JSON(http.StatusOK, viewOf(it))
}

// handlePreview serves a visual for the uploaded source: images get a
// cached thumbnail, PDFs are served as-is, everything else has none.
func (s *Server) handlePreview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid item id")
		return
	}
	it, ok := s.store.Get(id)
	if !ok {
		jsonError(c, http.StatusNotFound, "item not found")
		return
	}

	switch constants.FormatForFile(it.FileName, it.ContentType) {
	case constants.FormatImage:
		if it.PreviewPath != "" {
			if _, err := os.Stat(it.PreviewPath); err == nil {
				c.File(it.PreviewPath)
				return
			}
		}
		path, err := s.buildPreview(it)
		if err != nil {
			s.logger.Error("preview.generate_failed", "item_id", it.ID, "file", it.FileName, "error", err)
			jsonError(c, http.StatusInternalServerError, "preview generation failed")
			return
		}
		c.File(path)
	case constants.FormatPDF:
		c.Header("Content-Type", "application/pdf")
		c.File(it.Path)
	default:
		jsonError(c, http.StatusNotFound, "no preview available for this file type")
	}
}

// buildPreview renders the thumbnail once and remembers its path on the
// item, so repeat requests hit the cached file.
func (s *Server) buildPreview(it queue.Item) (string, error) {
	if err := os.MkdirAll(s.previewsDir(), 0o755); err != nil {
		return "", err
	}
	src, err := imaging.Open(it.Path, imaging.AutoOrientation(true))
	if err != nil {
		return "", err
	}
	thumb := imaging.Fit(src, previewBox, previewBox, imaging.Lanczos)
	dst := filepath.Join(s.previewsDir(), it.ID.String()+".jpg")
	if err := imaging.Save(thumb, dst); err != nil {
		return "", err
	}
	s.store.SetPreviewPath(it.ID, dst)
	return dst, nil
}
