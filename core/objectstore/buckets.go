package objectstore

import (
	"context"

	"s3-client/core/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// BucketManager provisions buckets idempotently.
type BucketManager struct {
	backend storage.Backend
	logger  *zap.Logger
	group   singleflight.Group
}

// NewBucketManager creates a BucketManager.
func NewBucketManager(backend storage.Backend, logger *zap.Logger) *BucketManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BucketManager{backend: backend, logger: logger}
}

// Exists probes bucket. A "no such bucket" failure counts as absent.
func (m *BucketManager) Exists(ctx context.Context, bucket string) (bool, error) {
	exists, err := m.backend.BucketExists(ctx, bucket)
	if err != nil {
		if storage.IsNoSuchBucket(err) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

// Ensure creates bucket unless it already exists.
// Concurrent calls for the same bucket in this process share one probe and
// create. Callers in other processes may still race; a provider reply that
// the bucket already exists is treated as success.
//
// The shared flight is not bound to any single caller's cancellation. Each
// caller stops waiting when its own context is done.
func (m *BucketManager) Ensure(ctx context.Context, bucket, location string) error {
	flight := context.WithoutCancel(ctx)
	ch := m.group.DoChan(bucket, func() (any, error) {
		return nil, m.ensure(flight, bucket, location)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *BucketManager) ensure(ctx context.Context, bucket, location string) error {
	exists, err := m.Exists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.create(ctx, bucket, location)
}

func (m *BucketManager) create(ctx context.Context, bucket, location string) error {
	if err := m.backend.MakeBucket(ctx, bucket, location); err != nil {
		if storage.IsBucketAlreadyExists(err) {
			m.logger.Debug("Bucket created concurrently", zap.String("bucket", bucket))
			return nil
		}
		return err
	}
	m.logger.Info("Bucket created", zap.String("bucket", bucket), zap.String("location", location))
	return nil
}

// Delete removes an empty bucket.
func (m *BucketManager) Delete(ctx context.Context, bucket string) error {
	if err := m.backend.RemoveBucket(ctx, bucket); err != nil {
		return err
	}
	m.logger.Info("Bucket deleted", zap.String("bucket", bucket))
	return nil
}
