package mocks

import (
	"context"
	"io"

	"s3-client/core/storage"

	"github.com/stretchr/testify/mock"
)

// Backend is a mock implementation of storage.Backend
type Backend struct {
	mock.Mock
}

func (m *Backend) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *Backend) MakeBucket(ctx context.Context, bucket, location string) error {
	args := m.Called(ctx, bucket, location)
	return args.Error(0)
}

func (m *Backend) RemoveBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *Backend) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64) error {
	args := m.Called(ctx, bucket, key, reader, size)
	return args.Error(0)
}

func (m *Backend) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	if obj, ok := args.Get(0).(io.ReadCloser); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) ListObjectsPage(ctx context.Context, bucket string, query storage.ListQuery) (*storage.ListPage, error) {
	args := m.Called(ctx, bucket, query)
	if page, ok := args.Get(0).(*storage.ListPage); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) RemoveObjects(ctx context.Context, bucket string, keys []string) (*storage.DeleteResult, error) {
	args := m.Called(ctx, bucket, keys)
	if res, ok := args.Get(0).(*storage.DeleteResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
