package review

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/queue"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/recipe"
)

// ErrNothingUnderReview is returned by edit operations when no item is
// selected for review.
var ErrNothingUnderReview = errors.New("no item is under review")

// Form is the editable working copy of one recipe, tied to the queue
// item it was seeded from.
type Form struct {
	ItemID uuid.UUID
	Recipe recipe.Recipe
}

// FieldPatch carries scalar field edits. Nil fields stay unchanged.
type FieldPatch struct {
	Name            *string
	Description     *string
	Servings        *int
	PrepTimeMinutes *int
	CookTimeMinutes *int
}

// Session owns the working copy for the item currently selected for
// review. It re-seeds itself whenever a different item becomes
// selected, so switching items discards unsaved edits; only Confirm
// writes anything back to the queue.
type Session struct {
	mu    sync.Mutex
	store *queue.Store

	itemID uuid.UUID
	work   recipe.Recipe
}

func NewSession(store *queue.Store) *Session {
	return &Session{store: store}
}

// syncLocked aligns the working copy with the store's selection.
func (s *Session) syncLocked() error {
	sel, ok := s.store.Selected()
	if !ok {
		s.itemID = uuid.Nil
		s.work = recipe.Recipe{}
		return ErrNothingUnderReview
	}
	if sel.ID != s.itemID {
		s.itemID = sel.ID
		if sel.Recipe != nil {
			s.work = sel.Recipe.Clone()
		} else {
			s.work = recipe.Recipe{}
		}
		s.work.EnsureLists()
	}
	return nil
}

func (s *Session) formLocked() Form {
	return Form{ItemID: s.itemID, Recipe: s.work.Clone()}
}

// Current returns the active form, if any.
func (s *Session) Current() (Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(); err != nil {
		return Form{}, false
	}
	return s.formLocked(), true
}

// UpdateFields applies scalar edits to the working copy.
func (s *Session) UpdateFields(p FieldPatch) (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(); err != nil {
		return Form{}, err
	}
	if p.Name != nil {
		s.work.Name = *p.Name
	}
	if p.Description != nil {
		s.work.Description = *p.Description
	}
	if p.Servings != nil {
		s.work.Servings = *p.Servings
	}
	if p.PrepTimeMinutes != nil {
		s.work.PrepTimeMinutes = *p.PrepTimeMinutes
	}
	if p.CookTimeMinutes != nil {
		s.work.CookTimeMinutes = *p.CookTimeMinutes
	}
	return s.formLocked(), nil
}

// AddIngredient appends an empty ingredient row.
func (s *Session) AddIngredient() (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(); err != nil {
		return Form{}, err
	}
	s.work.Ingredients = append(s.work.Ingredients, recipe.Ingredient{})
	return s.formLocked(), nil
}

// UpdateIngredient replaces the ingredient at index i.
func (s *Session) UpdateIngredient(i int, ing recipe.Ingredient) (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(); err != nil {
		return Form{}, err
	}
	if i < 0 || i >= len(s.work.Ingredients) {
		return Form{}, fmt.Errorf("ingredient index %d out of range", i)
	}
	s.work.Ingredients[i] = ing
	return s.formLocked(), nil
}

// AddStep appends an empty step row.
func (s *Session) AddStep() (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(); err != nil {
		return Form{}, err
	}
	s.work.Steps = append(s.work.Steps, recipe.Step{})
	return s.formLocked(), nil
}

// UpdateStep replaces the step at index i.
func (s *Session) UpdateStep(i int, st recipe.Step) (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(); err != nil {
		return Form{}, err
	}
	if i < 0 || i >= len(s.work.Steps) {
		return Form{}, fmt.Errorf("step index %d out of range", i)
	}
	s.work.Steps[i] = st
	return s.formLocked(), nil
}

// AddKeyword appends an empty keyword.
func (s *Session) AddKeyword() (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(); err != nil {
		return Form{}, err
	}
	s.work.Keywords = append(s.work.Keywords, "")
	return s.formLocked(), nil
}

// UpdateKeyword replaces the keyword at index i.
func (s *Session) UpdateKeyword(i int, kw string) (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(); err != nil {
		return Form{}, err
	}
	if i < 0 || i >= len(s.work.Keywords) {
		return Form{}, fmt.Errorf("keyword index %d out of range", i)
	}
	s.work.Keywords[i] = kw
	return s.formLocked(), nil
}

// RemoveKeyword deletes the keyword at index i. Keywords are the only
// list with a remove operation; ingredients and steps can only be
// appended and edited.
func (s *Session) RemoveKeyword(i int) (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(); err != nil {
		return Form{}, err
	}
	if i < 0 || i >= len(s.work.Keywords) {
		return Form{}, fmt.Errorf("keyword index %d out of range", i)
	}
	s.work.Keywords = append(s.work.Keywords[:i], s.work.Keywords[i+1:]...)
	return s.formLocked(), nil
}

// Confirm writes the working copy back onto the queue item, completing
// it and clearing the review selection.
func (s *Session) Confirm() (queue.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.syncLocked(); err != nil {
		return queue.Item{}, err
	}
	it, err := s.store.Confirm(s.itemID, s.work.Clone())
	if err != nil {
		return queue.Item{}, err
	}
	s.itemID = uuid.Nil
	s.work = recipe.Recipe{}
	return it, nil
}

// Cancel discards the working copy and clears the review selection
// without touching the queue item.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.itemID = uuid.Nil
	s.work = recipe.Recipe{}
	s.store.CancelReview()
}
