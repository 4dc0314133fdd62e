package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// memObject holds the raw data of an in-memory object.
type memObject struct {
	Data         []byte
	LastModified time.Time
}

// MemoryBackend implements Backend with in-memory maps. Listing pages and
// error codes follow S3 so the objectstore policies behave as they would
// against a real provider.
type MemoryBackend struct {
	mu       sync.RWMutex
	buckets  map[string]map[string]memObject
	pageSize int
}

// NewMemoryBackend creates an empty store. pageSize <= 0 uses 1000 keys per page.
func NewMemoryBackend(pageSize int) *MemoryBackend {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &MemoryBackend{
		buckets:  make(map[string]map[string]memObject),
		pageSize: pageSize,
	}
}

func noSuchBucket(bucket string) error {
	return &ResponseError{Code: CodeNoSuchBucket, StatusCode: http.StatusNotFound, Message: fmt.Sprintf("The specified bucket does not exist: %s", bucket)}
}

func noSuchKey(key string) error {
	return &ResponseError{Code: CodeNoSuchKey, StatusCode: http.StatusNotFound, Message: fmt.Sprintf("The specified key does not exist: %s", key)}
}

// BucketExists checks if a bucket exists.
func (b *MemoryBackend) BucketExists(_ context.Context, bucket string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.buckets[bucket]
	return ok, nil
}

// MakeBucket creates a bucket. Creating an existing bucket fails with
// BucketAlreadyOwnedByYou.
func (b *MemoryBackend) MakeBucket(_ context.Context, bucket, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.buckets[bucket]; ok {
		return &ResponseError{Code: CodeBucketAlreadyOwnedByYou, StatusCode: http.StatusConflict, Message: "Your previous request to create the named bucket succeeded and you already own it."}
	}
	b.buckets[strings.Clone(bucket)] = make(map[string]memObject)
	return nil
}

// RemoveBucket deletes an empty bucket.
func (b *MemoryBackend) RemoveBucket(_ context.Context, bucket string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	objects, ok := b.buckets[bucket]
	if !ok {
		return noSuchBucket(bucket)
	}
	if len(objects) > 0 {
		return &ResponseError{Code: CodeBucketNotEmpty, StatusCode: http.StatusConflict, Message: "The bucket you tried to delete is not empty"}
	}
	delete(b.buckets, bucket)
	return nil
}

// PutObject stores the full contents of reader.
func (b *MemoryBackend) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading object data: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("object size mismatch: expected %d bytes, read %d", size, len(data))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	objects, ok := b.buckets[bucket]
	if !ok {
		return noSuchBucket(bucket)
	}
	objects[strings.Clone(key)] = memObject{Data: data, LastModified: time.Now().UTC()}
	return nil
}

// GetObject returns a reader over a copy of the object data.
func (b *MemoryBackend) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	objects, ok := b.buckets[bucket]
	if !ok {
		return nil, noSuchBucket(bucket)
	}
	obj, ok := objects[key]
	if !ok {
		return nil, noSuchKey(key)
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(obj.Data))), nil
}

// ListObjectsPage returns keys in lexical order after the continuation
// token. With a delimiter, keys sharing a prefix up to the delimiter are
// rolled up into one common prefix.
func (b *MemoryBackend) ListObjectsPage(ctx context.Context, bucket string, query ListQuery) (*ListPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	objects, ok := b.buckets[bucket]
	if !ok {
		b.mu.RUnlock()
		return nil, noSuchBucket(bucket)
	}
	keys := make([]string, 0, len(objects))
	for key := range objects {
		if strings.HasPrefix(key, query.Prefix) && key > query.ContinuationToken {
			keys = append(keys, key)
		}
	}
	snapshot := make(map[string]memObject, len(keys))
	for _, key := range keys {
		snapshot[key] = objects[key]
	}
	b.mu.RUnlock()

	sort.Strings(keys)

	limit := query.MaxKeys
	if limit <= 0 || limit > b.pageSize {
		limit = b.pageSize
	}

	page := &ListPage{}
	var (
		count      int
		last       string
		lastPrefix string
	)
	for _, key := range keys {
		if query.Delimiter != "" {
			rest := key[len(query.Prefix):]
			if idx := strings.Index(rest, query.Delimiter); idx >= 0 {
				cp := query.Prefix + rest[:idx+len(query.Delimiter)]
				if cp == lastPrefix {
					last = key
					continue
				}
				if count == limit {
					page.IsTruncated = true
					break
				}
				page.CommonPrefixes = append(page.CommonPrefixes, cp)
				lastPrefix = cp
				last = key
				count++
				continue
			}
		}
		if count == limit {
			page.IsTruncated = true
			break
		}
		obj := snapshot[key]
		page.Objects = append(page.Objects, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.Data)),
			LastModified: obj.LastModified,
		})
		last = key
		count++
	}
	if page.IsTruncated {
		page.NextContinuationToken = last
	}
	return page, nil
}

// RemoveObjects deletes keys. Missing keys count as deleted, as in S3.
func (b *MemoryBackend) RemoveObjects(ctx context.Context, bucket string, keys []string) (*DeleteResult, error) {
	if len(keys) > MaxDeleteKeys {
		return nil, fmt.Errorf("cannot delete %d keys in one request, limit is %d", len(keys), MaxDeleteKeys)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	objects, ok := b.buckets[bucket]
	if !ok {
		return nil, noSuchBucket(bucket)
	}
	result := &DeleteResult{Deleted: make([]string, 0, len(keys))}
	for _, key := range keys {
		delete(objects, key)
		result.Deleted = append(result.Deleted, key)
	}
	return result, nil
}

var _ Backend = (*MemoryBackend)(nil)
