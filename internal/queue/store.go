package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AlexViridi/TandoorRecipeMigration/constants"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/common"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/recipe"
)

// Item is one uploaded file plus its processing state. All fields are
// owned by the Store; consumers only ever see snapshot copies.
type Item struct {
	ID          uuid.UUID
	FileName    string
	Path        string
	ContentType string
	Size        int64
	UploadedAt  time.Time
	Status      constants.Status
	Recipe      *recipe.Recipe
	Failure     *common.Failure
	PreviewPath string
}

func (it *Item) snapshot() Item {
	out := *it
	if it.Recipe != nil {
		r := it.Recipe.Clone()
		out.Recipe = &r
	}
	if it.Failure != nil {
		f := *it.Failure
		out.Failure = &f
	}
	return out
}

// Store holds the upload queue. Every mutation goes through one of the
// named transition methods below, each atomic under the store mutex, so
// no two operations can race on the same item.
type Store struct {
	mu       sync.Mutex
	items    []*Item
	byID     map[uuid.UUID]*Item
	selected uuid.UUID
}

func NewStore() *Store {
	return &Store{byID: make(map[uuid.UUID]*Item)}
}

// Add appends a new PENDING item and returns its snapshot. Adding never
// starts processing.
func (s *Store) Add(fileName, path, contentType string, size int64) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := &Item{
		ID:          uuid.New(),
		FileName:    fileName,
		Path:        path,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now(),
		Status:      constants.StatusPending,
	}
	s.items = append(s.items, it)
	s.byID[it.ID] = it
	return it.snapshot()
}

// Snapshot returns copies of all items in upload order.
func (s *Store) Snapshot() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.snapshot())
	}
	return out
}

// Get returns a copy of one item.
func (s *Store) Get(id uuid.UUID) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[id]
	if !ok {
		return Item{}, false
	}
	return it.snapshot(), true
}

// Completed returns copies of all COMPLETED items in upload order.
func (s *Store) Completed() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Item
	for _, it := range s.items {
		if it.Status == constants.StatusCompleted {
			out = append(out, it.snapshot())
		}
	}
	return out
}

// pendingIDs returns the ids of all currently PENDING items in upload
// order. Batch runs operate on this snapshot: items added afterwards
// stay PENDING until the next run.
func (s *Store) pendingIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []uuid.UUID
	for _, it := range s.items {
		if it.Status == constants.StatusPending {
			out = append(out, it.ID)
		}
	}
	return out
}

// MarkProcessing transitions a PENDING item to PROCESSING.
func (s *Store) MarkProcessing(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("unknown item %s", id)
	}
	if it.Status != constants.StatusPending {
		return fmt.Errorf("item %s is %s, not %s", id, it.Status, constants.StatusPending)
	}
	it.Status = constants.StatusProcessing
	return nil
}

// MarkReview stores the extracted recipe, stamps the originating file
// name onto it and transitions the item to REVIEW. When no item is
// currently selected for review this one becomes selected; the returned
// bool reports that.
func (s *Store) MarkReview(id uuid.UUID, rec recipe.Recipe) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[id]
	if !ok {
		return false, fmt.Errorf("unknown item %s", id)
	}
	if it.Status != constants.StatusProcessing {
		return false, fmt.Errorf("item %s is %s, not %s", id, it.Status, constants.StatusProcessing)
	}

	rec.EnsureLists()
	rec.OriginalFileName = it.FileName
	it.Recipe = &rec
	it.Failure = nil
	it.Status = constants.StatusReview

	if s.selected == uuid.Nil {
		s.selected = id
		return true, nil
	}
	return false, nil
}

// MarkFailed records the failure and transitions the item to ERROR.
// ERROR is terminal: there is no retry transition, the user re-uploads
// the file instead.
func (s *Store) MarkFailed(id uuid.UUID, f *common.Failure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("unknown item %s", id)
	}
	if it.Status != constants.StatusProcessing {
		return fmt.Errorf("item %s is %s, not %s", id, it.Status, constants.StatusProcessing)
	}
	it.Failure = f
	it.Status = constants.StatusError
	return nil
}

// Selected returns a copy of the item currently under review.
func (s *Store) Selected() (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == uuid.Nil {
		return Item{}, false
	}
	it, ok := s.byID[s.selected]
	if !ok {
		return Item{}, false
	}
	return it.snapshot(), true
}

// Select makes the given REVIEW item the active one. Switching away
// from another item discards nothing here: unsaved edits live in the
// review form, which re-seeds from the newly selected item.
func (s *Store) Select(id uuid.UUID) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[id]
	if !ok {
		return Item{}, fmt.Errorf("unknown item %s", id)
	}
	if it.Status != constants.StatusReview {
		return Item{}, fmt.Errorf("item %s is %s, only %s items can be selected", id, it.Status, constants.StatusReview)
	}
	s.selected = id
	return it.snapshot(), nil
}

// Confirm copies the edited recipe onto the item, transitions it to
// COMPLETED and clears the review selection. COMPLETED is frozen:
// confirming again fails and leaves the item untouched.
func (s *Store) Confirm(id uuid.UUID, rec recipe.Recipe) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.byID[id]
	if !ok {
		return Item{}, fmt.Errorf("unknown item %s", id)
	}
	if it.Status != constants.StatusReview {
		return Item{}, fmt.Errorf("item %s is %s, not %s", id, it.Status, constants.StatusReview)
	}

	rec.EnsureLists()
	it.Recipe = &rec
	it.Status = constants.StatusCompleted
	if s.selected == id {
		s.selected = uuid.Nil
	}
	return it.snapshot(), nil
}

// CancelReview clears the review selection without mutating any item.
func (s *Store) CancelReview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = uuid.Nil
}

// SetPreviewPath records the lazily generated preview artifact for an
// item.
func (s *Store) SetPreviewPath(id uuid.UUID, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it, ok := s.byID[id]; ok {
		it.PreviewPath = path
	}
}
