package storage_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"s3-client/core/storage"
	"s3-client/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMinioBackend_BucketExists(t *testing.T) {
	mockClient := new(mocks.MinioAPI)
	b := storage.NewMinioBackendWithClient(mockClient, "us-east-1")
	ctx := context.Background()

	mockClient.On("BucketExists", ctx, "assets").Return(true, nil)

	exists, err := b.BucketExists(ctx, "assets")
	require.NoError(t, err)
	assert.True(t, exists)
	mockClient.AssertExpectations(t)
}

func TestMinioBackend_MakeBucketUsesRegion(t *testing.T) {
	mockClient := new(mocks.MinioAPI)
	b := storage.NewMinioBackendWithClient(mockClient, "eu-central-1")
	ctx := context.Background()

	mockClient.On("MakeBucket", ctx, "assets", minio.MakeBucketOptions{Region: "eu-central-1"}).Return(nil).Once()
	mockClient.On("MakeBucket", ctx, "logs", minio.MakeBucketOptions{Region: "ap-south-1"}).Return(nil).Once()

	require.NoError(t, b.MakeBucket(ctx, "assets", ""))
	require.NoError(t, b.MakeBucket(ctx, "logs", "ap-south-1"))
	mockClient.AssertExpectations(t)
}

func TestMinioBackend_PutObject(t *testing.T) {
	mockClient := new(mocks.MinioAPI)
	b := storage.NewMinioBackendWithClient(mockClient, "us-east-1")
	ctx := context.Background()
	reader := strings.NewReader("payload")

	mockClient.On("PutObject", ctx, "assets", "k", reader, int64(-1), mock.Anything).Return(minio.UploadInfo{}, nil)

	require.NoError(t, b.PutObject(ctx, "assets", "k", reader, -5))
	mockClient.AssertExpectations(t)
}

func TestMinioBackend_GetObject(t *testing.T) {
	mockClient := new(mocks.MinioAPI)
	b := storage.NewMinioBackendWithClient(mockClient, "us-east-1")
	ctx := context.Background()

	mockClient.On("GetObject", ctx, "assets", "k", mock.Anything).Return(io.NopCloser(strings.NewReader("hello")), nil)
	missing := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
	mockClient.On("GetObject", ctx, "assets", "gone", mock.Anything).Return(nil, missing)

	rc, err := b.GetObject(ctx, "assets", "k")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "hello", string(data))

	_, err = b.GetObject(ctx, "assets", "gone")
	assert.True(t, storage.IsNoSuchKey(err))
}

func TestMinioBackend_ListObjectsPage(t *testing.T) {
	mockClient := new(mocks.MinioAPI)
	b := storage.NewMinioBackendWithClient(mockClient, "us-east-1")
	ctx := context.Background()
	modified := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	query := storage.ListQuery{Prefix: "x/", Delimiter: "/", MaxKeys: 100}

	mockClient.On("ListObjectsPage", ctx, "assets", query).Return(minio.ListBucketV2Result{
		Contents: []minio.ObjectInfo{
			{Key: "x/a", Size: 10, LastModified: modified},
		},
		CommonPrefixes:        []minio.CommonPrefix{{Prefix: "x/sub/"}},
		IsTruncated:           true,
		NextContinuationToken: "token-1",
	}, nil)

	page, err := b.ListObjectsPage(ctx, "assets", query)
	require.NoError(t, err)
	require.Len(t, page.Objects, 1)
	assert.Equal(t, storage.ObjectInfo{Key: "x/a", Size: 10, LastModified: modified}, page.Objects[0])
	assert.Equal(t, []string{"x/sub/"}, page.CommonPrefixes)
	assert.True(t, page.IsTruncated)
	assert.Equal(t, "token-1", page.NextContinuationToken)
}

func TestMinioBackend_ListObjectsPageError(t *testing.T) {
	mockClient := new(mocks.MinioAPI)
	b := storage.NewMinioBackendWithClient(mockClient, "us-east-1")
	ctx := context.Background()

	mockClient.On("ListObjectsPage", ctx, "assets", mock.Anything).Return(minio.ListBucketV2Result{}, errors.New("connection reset"))

	_, err := b.ListObjectsPage(ctx, "assets", storage.ListQuery{})
	assert.EqualError(t, err, "connection reset")
}

func removeErrors(errs ...minio.RemoveObjectError) <-chan minio.RemoveObjectError {
	ch := make(chan minio.RemoveObjectError, len(errs))
	for _, e := range errs {
		ch <- e
	}
	close(ch)
	return ch
}

func TestMinioBackend_RemoveObjects(t *testing.T) {
	mockClient := new(mocks.MinioAPI)
	b := storage.NewMinioBackendWithClient(mockClient, "us-east-1")
	ctx := context.Background()

	denied := minio.ErrorResponse{Code: "AccessDenied", Message: "Access Denied", StatusCode: http.StatusForbidden}
	mockClient.On("RemoveObjects", ctx, "assets", mock.Anything, mock.Anything).
		Return(removeErrors(minio.RemoveObjectError{ObjectName: "b", Err: denied}))

	res, err := b.RemoveObjects(ctx, "assets", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, res.Deleted)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "b", res.Errors[0].Key)
	assert.Equal(t, "AccessDenied", res.Errors[0].Code)
}

func TestMinioBackend_RemoveObjectsMissingBucket(t *testing.T) {
	mockClient := new(mocks.MinioAPI)
	b := storage.NewMinioBackendWithClient(mockClient, "us-east-1")
	ctx := context.Background()

	noBucket := minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: http.StatusNotFound}
	mockClient.On("RemoveObjects", ctx, "assets", mock.Anything, mock.Anything).
		Return(removeErrors(minio.RemoveObjectError{ObjectName: "a", Err: noBucket}))

	_, err := b.RemoveObjects(ctx, "assets", []string{"a"})
	assert.True(t, storage.IsNoSuchBucket(err))
}

func TestMinioBackend_RemoveObjectsLimit(t *testing.T) {
	mockClient := new(mocks.MinioAPI)
	b := storage.NewMinioBackendWithClient(mockClient, "us-east-1")

	_, err := b.RemoveObjects(context.Background(), "assets", make([]string, storage.MaxDeleteKeys+1))
	assert.Error(t, err)
	mockClient.AssertNotCalled(t, "RemoveObjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
