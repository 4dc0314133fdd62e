package objectstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"s3-client/core/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrPartialBatch matches any *BatchDeleteError.
var ErrPartialBatch = errors.New("batch delete incomplete")

// DeletionReport aggregates the outcome of a bulk delete.
type DeletionReport struct {
	// Requested is the number of keys the caller asked to delete.
	Requested int `json:"requested"`
	// Deleted is the number of keys the provider confirmed as removed.
	Deleted int `json:"deleted"`
	// Chunks is the number of delete requests issued.
	Chunks int `json:"chunks"`
}

// BatchDeleteError reports a bulk delete that did not remove every key.
// Keys removed by other chunks are not restored.
type BatchDeleteError struct {
	// Deleted is the number of keys confirmed removed before the failure was reported.
	Deleted int
	// Failed holds the per-key errors returned inside delete responses.
	Failed []storage.DeleteError
	// Err is the first request level failure, if any.
	Err error
}

func (e *BatchDeleteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("batch delete failed after %d deletions: %v", e.Deleted, e.Err)
	}
	return fmt.Sprintf("batch delete: %d keys failed, %d deleted", len(e.Failed), e.Deleted)
}

// Unwrap exposes the provider error.
func (e *BatchDeleteError) Unwrap() error { return e.Err }

// Is reports a match for ErrPartialBatch.
func (e *BatchDeleteError) Is(target error) bool { return target == ErrPartialBatch }

// Deleter removes key sets in chunks of storage.MaxDeleteKeys.
type Deleter struct {
	backend     storage.Backend
	concurrency int
	logger      *zap.Logger
}

// NewDeleter creates a Deleter. A concurrency of 0 sends every chunk at once.
func NewDeleter(backend storage.Backend, concurrency int, logger *zap.Logger) *Deleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deleter{backend: backend, concurrency: concurrency, logger: logger}
}

// Chunk splits keys into consecutive slices of at most size keys.
// The slices share keys' backing array.
func Chunk(keys []string, size int) [][]string {
	if size <= 0 {
		size = storage.MaxDeleteKeys
	}
	chunks := make([][]string, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		chunks = append(chunks, keys[start:end:end])
	}
	return chunks
}

// DeleteAll deletes keys from bucket. Chunks are dispatched without waiting
// for each other and complete in any order. The report is returned even on
// failure and counts what was confirmed deleted.
func (d *Deleter) DeleteAll(ctx context.Context, bucket string, keys []string) (*DeletionReport, error) {
	chunks := Chunk(keys, storage.MaxDeleteKeys)
	report := &DeletionReport{Requested: len(keys), Chunks: len(chunks)}
	if len(chunks) == 0 {
		return report, nil
	}

	var (
		deleted atomic.Int64
		mu      sync.Mutex
		failed  []storage.DeleteError
	)

	g, gctx := errgroup.WithContext(ctx)
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			res, err := d.backend.RemoveObjects(gctx, bucket, chunk)
			if err != nil {
				d.logger.Warn("Delete chunk failed",
					zap.String("bucket", bucket),
					zap.Int("chunk", i),
					zap.Int("keys", len(chunk)),
					zap.Error(err))
				return err
			}
			deleted.Add(int64(len(res.Deleted)))
			if len(res.Errors) > 0 {
				mu.Lock()
				failed = append(failed, res.Errors...)
				mu.Unlock()
			}
			return nil
		})
	}
	err := g.Wait()
	report.Deleted = int(deleted.Load())

	if err != nil || len(failed) > 0 {
		d.logger.Warn("Batch delete incomplete",
			zap.String("bucket", bucket),
			zap.Int("requested", report.Requested),
			zap.Int("deleted", report.Deleted),
			zap.Int("failed_keys", len(failed)))
		return report, &BatchDeleteError{Deleted: report.Deleted, Failed: failed, Err: err}
	}
	return report, nil
}
