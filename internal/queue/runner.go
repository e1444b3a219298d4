package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/common"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/extract"
	"github.com/AlexViridi/TandoorRecipeMigration/internal/reader"
)

// ErrBatchRunning is returned when a batch start is attempted while
// another batch is still in flight.
var ErrBatchRunning = errors.New("a batch is already being processed")

// ErrClosed is returned when the runner has been shut down.
var ErrClosed = errors.New("queue runner is shut down")

// ContentReader prepares an uploaded file for extraction.
type ContentReader interface {
	Read(path, name, declaredType string) (reader.Content, error)
}

// Runner processes queue items with a single worker, one item at a
// time. The sequential contract is load-bearing: results become visible
// in upload order and the AI service sees at most one request from this
// process at any moment.
type Runner struct {
	store     *Store
	reader    ContentReader
	extractor extract.RecipeExtractor
	logger    *slog.Logger

	ch   chan []uuid.UUID
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	busy   bool
	closed bool
}

func NewRunner(store *Store, rdr ContentReader, extractor extract.RecipeExtractor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		store:     store,
		reader:    rdr,
		extractor: extractor,
		logger:    logger,
		ch:        make(chan []uuid.UUID, 1),
	}
	r.start()
	return r
}

func (r *Runner) start() {
	r.once.Do(func() {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.logger.Info("queue.worker.started")
			for ids := range r.ch {
				r.processBatch(ids)
			}
			r.logger.Info("queue.worker.stopped")
		}()
	})
}

// StartBatch snapshots the currently PENDING items and hands them to
// the worker. It reports how many items were scheduled; zero with a nil
// error means there was nothing to do. While a batch is in flight any
// further start attempt fails with ErrBatchRunning. Items added after
// the snapshot stay PENDING until the next run.
func (r *Runner) StartBatch() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrClosed
	}
	if r.busy {
		return 0, ErrBatchRunning
	}

	ids := r.store.pendingIDs()
	if len(ids) == 0 {
		return 0, nil
	}

	// busy gates the send, so the buffered channel is always empty here.
	r.busy = true
	r.ch <- ids
	r.logger.Info("queue.batch.scheduled", "items", len(ids))
	return len(ids), nil
}

// Busy reports whether a batch is currently in flight.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}

func (r *Runner) processBatch(ids []uuid.UUID) {
	start := time.Now()
	r.logger.Info("queue.batch.start", "items", len(ids))

	for _, id := range ids {
		r.processItem(id)
	}

	r.mu.Lock()
	r.busy = false
	r.mu.Unlock()

	r.logger.Info("queue.batch.done", "items", len(ids), "elapsed_ms", time.Since(start).Milliseconds())
}

// processItem runs one item through the reader and the extractor.
// Failures are recorded on the item and never abort the batch.
func (r *Runner) processItem(id uuid.UUID) {
	it, ok := r.store.Get(id)
	if !ok {
		r.logger.Warn("queue.item.vanished", "item_id", id)
		return
	}
	if err := r.store.MarkProcessing(id); err != nil {
		r.logger.Warn("queue.item.skipped", "item_id", id, "error", err)
		return
	}

	start := time.Now()
	r.logger.Info("queue.item.start", "item_id", id, "file", it.FileName)

	content, err := r.reader.Read(it.Path, it.FileName, it.ContentType)
	if err != nil {
		r.fail(id, common.FailureReader, err)
		return
	}

	rec, _, err := r.extractor.Extract(context.Background(), extract.Request{
		Content:  content,
		FileName: it.FileName,
	})
	if err != nil {
		r.fail(id, common.FailureExtraction, err)
		return
	}

	selected, err := r.store.MarkReview(id, rec)
	if err != nil {
		r.logger.Error("queue.item.review_transition_failed", "item_id", id, "error", err)
		return
	}
	r.logger.Info("queue.item.review",
		"item_id", id,
		"file", it.FileName,
		"recipe", rec.Name,
		"selected", selected,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

func (r *Runner) fail(id uuid.UUID, kind common.FailureKind, err error) {
	f, ok := common.AsFailure(err)
	if !ok {
		f = &common.Failure{Kind: kind, Message: err.Error(), Cause: err}
	}
	if mErr := r.store.MarkFailed(id, f); mErr != nil {
		r.logger.Error("queue.item.fail_transition_failed", "item_id", id, "error", mErr)
		return
	}
	r.logger.Error("queue.item.failed", "item_id", id, "kind", f.Kind, "error", err)
}

// Shutdown stops accepting batches and waits for the in-flight one to
// finish, bounded by ctx. In-flight extraction calls are not cancelled.
func (r *Runner) Shutdown(ctx context.Context) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); r.wg.Wait() }()

	select {
	case <-ctx.Done():
		r.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		r.logger.Info("queue.shutdown.complete")
	}
}
