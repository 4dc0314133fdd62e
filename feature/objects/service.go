package objects

import (
	"bytes"
	"context"
	"errors"

	"s3-client/core/objectstore"
	"s3-client/core/storage"

	"go.uber.org/zap"
)

// ErrEmptyDeleteRequest is returned when a delete request names neither keys nor a prefix.
var ErrEmptyDeleteRequest = errors.New("delete request needs keys or a prefix")

// DeleteRequest selects the objects removed by a bulk delete.
type DeleteRequest struct {
	Keys   []string `json:"keys"`
	Prefix string   `json:"prefix"`
}

// Service adapts the object store client to the HTTP handlers.
type Service struct {
	client *objectstore.Client
	logger *zap.Logger
}

// NewService creates a new objects service.
func NewService(client *objectstore.Client, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// CreateBucket provisions a bucket.
func (s *Service) CreateBucket(ctx context.Context, bucket, location string) (string, error) {
	name, err := s.client.NormalizeBucket(bucket)
	if err != nil {
		return "", err
	}
	if err := s.client.CreateBucket(ctx, bucket, location); err != nil {
		return "", err
	}
	return name, nil
}

// DeleteBucket removes an empty bucket.
func (s *Service) DeleteBucket(ctx context.Context, bucket string) error {
	return s.client.DeleteBucket(ctx, bucket)
}

// ListKeys returns every key under prefix.
func (s *Service) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	return s.client.ListObjects(ctx, bucket, prefix)
}

// ListStats returns every object under prefix with size and modification time.
func (s *Service) ListStats(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	return s.client.ListObjectsWithStats(ctx, bucket, prefix)
}

// Prefixes returns the common prefixes of the first listing page.
func (s *Service) Prefixes(ctx context.Context, bucket, delimiter string) ([]string, error) {
	return s.client.ListByDelimiter(ctx, bucket, delimiter)
}

// PutValue stores an already decoded value with the client codec.
func (s *Service) PutValue(ctx context.Context, bucket, key string, value any, create bool) error {
	if create {
		return s.client.PutAutoCreate(ctx, bucket, key, value)
	}
	return s.client.Put(ctx, bucket, key, value)
}

// PutRaw stores body without encoding.
func (s *Service) PutRaw(ctx context.Context, bucket, key string, body []byte, create bool) error {
	if create {
		return s.client.PutStreamAutoCreate(ctx, bucket, key, bytes.NewReader(body), int64(len(body)))
	}
	return s.client.PutStream(ctx, bucket, key, bytes.NewReader(body), int64(len(body)))
}

// GetValue fetches and decodes an object.
func (s *Service) GetValue(ctx context.Context, bucket, key string) (any, error) {
	return s.client.Get(ctx, bucket, key)
}

// GetRaw fetches the raw bytes of an object.
func (s *Service) GetRaw(ctx context.Context, bucket, key string) ([]byte, error) {
	return s.client.GetBuffer(ctx, bucket, key)
}

// Delete removes the keys or the prefix named by req.
func (s *Service) Delete(ctx context.Context, bucket string, req DeleteRequest) (*objectstore.DeletionReport, error) {
	switch {
	case len(req.Keys) > 0:
		return s.client.DeleteObjects(ctx, bucket, req.Keys)
	case req.Prefix != "":
		return s.client.DeletePrefix(ctx, bucket, req.Prefix)
	default:
		return nil, ErrEmptyDeleteRequest
	}
}
