package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/recipe"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/review"
)

func (s *Server) handleReviewForm(c *gin.Context) {
	f, ok := s.session.Current()
	if !ok {
		jsonError(c, http.StatusNotFound, "no item is under review")
		return
	}
	c.JSON(http.StatusOK, viewOfForm(f))
}

// handleSelect makes a REVIEW item the active one and seeds the form
// from its extracted recipe. Unsaved edits on the previous item are
// discarded.
func (s *Server) handleSelect(c *gin.Context) {
	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "expected JSON body with item_id")
		return
	}
	id, err := uuid.Parse(req.ItemID)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid item id")
		return
	}
	if _, ok := s.store.Get(id); !ok {
		jsonError(c, http.StatusNotFound, "item not found")
		return
	}
	if _, err := s.store.Select(id); err != nil {
		jsonError(c, http.StatusConflict, err.Error())
		return
	}

	f, ok := s.session.Current()
	if !ok {
		jsonError(c, http.StatusNotFound, "no item is under review")
		return
	}
	c.JSON(http.StatusOK, viewOfForm(f))
}

func (s *Server) handleUpdateFields(c *gin.Context) {
	var req struct {
		Name            *string `json:"name"`
		Description     *string `json:"description"`
		Servings        *int    `json:"servings"`
		PrepTimeMinutes *int    `json:"prep_time_minutes"`
		CookTimeMinutes *int    `json:"cook_time_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	f, err := s.session.UpdateFields(review.FieldPatch{
		Name:            req.Name,
		Description:     req.Description,
		Servings:        req.Servings,
		PrepTimeMinutes: req.PrepTimeMinutes,
		CookTimeMinutes: req.CookTimeMinutes,
	})
	s.respondForm(c, f, err)
}

func (s *Server) handleAddIngredient(c *gin.Context) {
	f, err := s.session.AddIngredient()
	s.respondForm(c, f, err)
}

func (s *Server) handleUpdateIngredient(c *gin.Context) {
	i, ok := indexParam(c)
	if !ok {
		return
	}
	var ing recipe.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	f, err := s.session.UpdateIngredient(i, ing)
	s.respondForm(c, f, err)
}

func (s *Server) handleAddStep(c *gin.Context) {
	f, err := s.session.AddStep()
	s.respondForm(c, f, err)
}

func (s *Server) handleUpdateStep(c *gin.Context) {
	i, ok := indexParam(c)
	if !ok {
		return
	}
	var st recipe.Step
	if err := c.ShouldBindJSON(&st); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	f, err := s.session.UpdateStep(i, st)
	s.respondForm(c, f, err)
}

func (s *Server) handleAddKeyword(c *gin.Context) {
	f, err := s.session.AddKeyword()
	s.respondForm(c, f, err)
}

func (s *Server) handleUpdateKeyword(c *gin.Context) {
	i, ok := indexParam(c)
	if !ok {
		return
	}
	var req struct {
		Keyword string `json:"keyword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	f, err := s.session.UpdateKeyword(i, req.Keyword)
	s.respondForm(c, f, err)
}

func (s *Server) handleRemoveKeyword(c *gin.Context) {
	i, ok := indexParam(c)
	if !ok {
		return
	}
	f, err := s.session.RemoveKeyword(i)
	s.respondForm(c, f, err)
}

// handleConfirm completes the reviewed item with the edited record and
// clears the selection.
func (s *Server) handleConfirm(c *gin.Context) {
	it, err := s.session.Confirm()
	if err != nil {
		if errors.Is(err, review.ErrNothingUnderReview) {
			jsonError(c, http.StatusNotFound, "no item is under review")
			return
		}
		jsonError(c, http.StatusConflict, err.Error())
		return
	}
	s.logger.Info("review.confirmed", "item_id", it.ID, "recipe", it.Recipe.Name)
	c.JSON(http.StatusOK, gin.H{"item": viewOf(it)})
}

// handleCancel drops the form; the item stays in REVIEW.
func (s *Server) handleCancel(c *gin.Context) {
	s.session.Cancel()
	c.Status(http.StatusNoContent)
}

func (s *Server) respondForm(c *gin.Context, f review.Form, err error) {
	if err != nil {
		if errors.Is(err, review.ErrNothingUnderReview) {
			jsonError(c, http.StatusNotFound, "no item is under review")
			return
		}
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, viewOfForm(f))
}

func indexParam(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid index")
		return 0, false
	}
	return i, true
}
