package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioAPI is the subset of the MinIO client the minio driver uses.
type MinioAPI interface {
	// BucketExists checks if a bucket exists.
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	// MakeBucket creates a new bucket.
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	// RemoveBucket deletes an empty bucket.
	RemoveBucket(ctx context.Context, bucketName string) error
	// PutObject uploads an object.
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	// GetObject downloads an object.
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	// ListObjectsPage issues a single ListObjectsV2 request.
	ListObjectsPage(ctx context.Context, bucketName string, query ListQuery) (minio.ListBucketV2Result, error)
	// RemoveObjects deletes multiple objects from a bucket.
	// objectsCh is a channel of object names to delete.
	RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError
}

// MinioBackend implements Backend with the MinIO Go client.
type MinioBackend struct {
	client MinioAPI
	region string
}

// NewMinioBackend creates a MinIO client based on the configuration.
func NewMinioBackend(cfg Config) (*MinioBackend, error) {
	if cfg.BucketIsEndpoint {
		return nil, errors.New("minio driver does not support bucket_is_endpoint")
	}

	timeoutDuration := timeout(cfg)

	// Create custom transport with strict timeouts
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration, // Connection setup timeout
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration, // Wait for first response byte timeout
	}

	lookup := minio.BucketLookupDNS
	if cfg.PathStyle {
		lookup = minio.BucketLookupPath
	}

	minioClient, err := minio.New(cfg.Host(), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.Secure(),
		Region:       cfg.Region,
		Transport:    transport,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	// Minio connects lazily; the first request surfaces endpoint problems.

	return NewMinioBackendWithClient(&minioClientWrapper{Client: minioClient, core: minio.Core{Client: minioClient}}, cfg.Region), nil
}

// NewMinioBackendWithClient wraps a pre-configured client. Used by tests.
func NewMinioBackendWithClient(client MinioAPI, region string) *MinioBackend {
	return &MinioBackend{client: client, region: region}
}

type minioClientWrapper struct {
	*minio.Client
	core minio.Core
}

// GetObject stats the object so a missing bucket or key fails here rather
// than on the first Read.
func (c *minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := c.Client.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

func (c *minioClientWrapper) ListObjectsPage(ctx context.Context, bucketName string, query ListQuery) (minio.ListBucketV2Result, error) {
	return c.core.ListObjectsV2(bucketName, query.Prefix, "", query.ContinuationToken, query.Delimiter, query.MaxKeys)
}

// BucketExists checks if a bucket exists.
func (b *MinioBackend) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return b.client.BucketExists(ctx, bucket)
}

// MakeBucket creates a new bucket.
func (b *MinioBackend) MakeBucket(ctx context.Context, bucket, location string) error {
	if location == "" {
		location = b.region
	}
	return b.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: location})
}

// RemoveBucket deletes an empty bucket.
func (b *MinioBackend) RemoveBucket(ctx context.Context, bucket string) error {
	return b.client.RemoveBucket(ctx, bucket)
}

// PutObject uploads an object. MinIO streams unknown sizes as multipart.
func (b *MinioBackend) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64) error {
	if size < 0 {
		size = -1
	}
	_, err := b.client.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{})
	return err
}

// GetObject downloads an object.
func (b *MinioBackend) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return b.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
}

// ListObjectsPage lists one page of objects.
func (b *MinioBackend) ListObjectsPage(ctx context.Context, bucket string, query ListQuery) (*ListPage, error) {
	res, err := b.client.ListObjectsPage(ctx, bucket, query)
	if err != nil {
		return nil, err
	}

	page := &ListPage{
		Objects:               make([]ObjectInfo, 0, len(res.Contents)),
		IsTruncated:           res.IsTruncated,
		NextContinuationToken: res.NextContinuationToken,
	}
	for _, obj := range res.Contents {
		page.Objects = append(page.Objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	for _, p := range res.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, p.Prefix)
	}
	return page, nil
}

// RemoveObjects deletes keys with a single multi-object delete request.
func (b *MinioBackend) RemoveObjects(ctx context.Context, bucket string, keys []string) (*DeleteResult, error) {
	if len(keys) > MaxDeleteKeys {
		return nil, fmt.Errorf("cannot delete %d keys in one request, limit is %d", len(keys), MaxDeleteKeys)
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	failed := make(map[string]struct{})
	result := &DeleteResult{}
	for rErr := range b.client.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		// A bucket-level failure is reported against every key.
		if IsNoSuchBucket(rErr.Err) {
			return nil, rErr.Err
		}
		failed[rErr.ObjectName] = struct{}{}
		result.Errors = append(result.Errors, DeleteError{
			Key:     rErr.ObjectName,
			Code:    ErrorCode(rErr.Err),
			Message: errMessage(rErr.Err),
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, key := range keys {
		if _, ok := failed[key]; !ok {
			result.Deleted = append(result.Deleted, key)
		}
	}
	return result, nil
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

var _ Backend = (*MinioBackend)(nil)
