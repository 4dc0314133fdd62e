package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// MaxDeleteKeys is the provider limit of keys per multi-object delete request.
const MaxDeleteKeys = 1000

// Backend is a single-request view of an S3-compatible provider.
// Implementations must be safe for concurrent use.
type Backend interface {
	// BucketExists probes a bucket. A missing bucket is (false, nil).
	BucketExists(ctx context.Context, bucket string) (bool, error)
	// MakeBucket creates a bucket. An empty location uses the configured region.
	MakeBucket(ctx context.Context, bucket, location string) error
	// RemoveBucket deletes an empty bucket.
	RemoveBucket(ctx context.Context, bucket string) error
	// PutObject uploads reader. A negative size means unknown length.
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64) error
	// GetObject opens an object for reading. The caller closes it.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	// ListObjectsPage issues one listing request.
	ListObjectsPage(ctx context.Context, bucket string, query ListQuery) (*ListPage, error)
	// RemoveObjects issues one multi-object delete of at most MaxDeleteKeys keys.
	RemoveObjects(ctx context.Context, bucket string, keys []string) (*DeleteResult, error)
}

// ListQuery describes one listing request.
type ListQuery struct {
	Prefix            string
	Delimiter         string
	ContinuationToken string
	MaxKeys           int
}

// ObjectInfo is a listing entry.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListPage is one page of a listing.
type ListPage struct {
	Objects               []ObjectInfo
	CommonPrefixes        []string
	IsTruncated           bool
	NextContinuationToken string
}

// DeleteError is a per-key failure reported inside a successful delete response.
type DeleteError struct {
	Key     string
	Code    string
	Message string
}

// DeleteResult is the outcome of one multi-object delete request.
type DeleteResult struct {
	Deleted []string
	Errors  []DeleteError
}

// NewBackend creates the backend selected by cfg.Driver.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverS3:
		return NewS3Backend(ctx, cfg)
	case DriverMinio:
		return NewMinioBackend(cfg)
	case DriverMemory:
		return NewMemoryBackend(cfg.PageSize), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func timeout(cfg Config) time.Duration {
	t := cfg.TimeoutSeconds
	if t <= 0 {
		t = 30
	}
	return time.Duration(t) * time.Second
}
