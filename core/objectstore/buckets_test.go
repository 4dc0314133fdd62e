package objectstore_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"s3-client/core/objectstore"
	"s3-client/core/storage"
	"s3-client/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBucketManager_Ensure(t *testing.T) {
	notFound := &storage.ResponseError{Code: storage.CodeNoSuchBucket, StatusCode: http.StatusNotFound}
	forbidden := &storage.ResponseError{Code: "AccessDenied", StatusCode: http.StatusForbidden}
	alreadyOwned := &storage.ResponseError{Code: storage.CodeBucketAlreadyOwnedByYou, StatusCode: http.StatusConflict}
	alreadyExists := &storage.ResponseError{Code: storage.CodeBucketAlreadyExists, StatusCode: http.StatusConflict}

	tests := []struct {
		name      string
		exists    bool
		probeErr  error
		create    bool
		createErr error
		wantErr   error
	}{
		{name: "Exists", exists: true},
		{name: "Absent", create: true},
		{name: "ProbeNoSuchBucket", probeErr: notFound, create: true},
		{name: "ProbeForbidden", probeErr: forbidden, wantErr: forbidden},
		{name: "RaceOwned", create: true, createErr: alreadyOwned},
		{name: "RaceExists", create: true, createErr: alreadyExists},
		{name: "CreateFails", create: true, createErr: assert.AnError, wantErr: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := new(mocks.Backend)
			backend.On("BucketExists", mock.Anything, "assets").Return(tt.exists, tt.probeErr)
			if tt.create {
				backend.On("MakeBucket", mock.Anything, "assets", "eu-west-1").Return(tt.createErr)
			}

			m := objectstore.NewBucketManager(backend, nil)
			err := m.Ensure(context.Background(), "assets", "eu-west-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			if !tt.create {
				backend.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
			}
			backend.AssertExpectations(t)
		})
	}
}

func TestBucketManager_ConcurrentEnsure(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend(0)
	m := objectstore.NewBucketManager(backend, nil)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = m.Ensure(ctx, "shared", "")
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	exists, err := m.Exists(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, exists)
}

// gatedBackend blocks bucket probes until release is closed.
type gatedBackend struct {
	storage.Backend
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBackend) BucketExists(ctx context.Context, bucket string) (bool, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return g.Backend.BucketExists(ctx, bucket)
}

func TestBucketManager_EnsureSurvivesFirstCallerCancel(t *testing.T) {
	backend := &gatedBackend{
		Backend: storage.NewMemoryBackend(0),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	m := objectstore.NewBucketManager(backend, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() { firstErr <- m.Ensure(firstCtx, "shared", "") }()
	<-backend.entered

	secondErr := make(chan error, 1)
	go func() { secondErr <- m.Ensure(context.Background(), "shared", "") }()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(backend.release)
	require.NoError(t, <-secondErr)

	exists, err := backend.Backend.BucketExists(context.Background(), "shared")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBucketManager_Delete(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend(0)
	m := objectstore.NewBucketManager(backend, nil)

	require.NoError(t, m.Ensure(ctx, "gone", ""))
	require.NoError(t, m.Delete(ctx, "gone"))

	err := m.Delete(ctx, "gone")
	assert.True(t, storage.IsNoSuchBucket(err))
}
