package storage_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"unsafe"

	"s3-client/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_Buckets(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend(0)

	exists, err := b.BucketExists(ctx, "assets")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, b.MakeBucket(ctx, "assets", ""))
	exists, err = b.BucketExists(ctx, "assets")
	require.NoError(t, err)
	assert.True(t, exists)

	err = b.MakeBucket(ctx, "assets", "")
	assert.True(t, storage.IsBucketAlreadyExists(err))

	require.NoError(t, b.PutObject(ctx, "assets", "a", strings.NewReader("x"), 1))
	err = b.RemoveBucket(ctx, "assets")
	assert.Equal(t, storage.CodeBucketNotEmpty, storage.ErrorCode(err))

	_, err = b.RemoveObjects(ctx, "assets", []string{"a"})
	require.NoError(t, err)
	require.NoError(t, b.RemoveBucket(ctx, "assets"))

	err = b.RemoveBucket(ctx, "assets")
	assert.True(t, storage.IsNoSuchBucket(err))
}

func TestMemoryBackend_Objects(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend(0)

	err := b.PutObject(ctx, "missing", "k", strings.NewReader("v"), 1)
	assert.True(t, storage.IsNoSuchBucket(err))

	require.NoError(t, b.MakeBucket(ctx, "assets", ""))
	require.NoError(t, b.PutObject(ctx, "assets", "k", strings.NewReader("value"), -1))

	rc, err := b.GetObject(ctx, "assets", "k")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "value", string(data))

	_, err = b.GetObject(ctx, "assets", "nope")
	assert.True(t, storage.IsNoSuchKey(err))
	assert.Equal(t, 404, storage.StatusCode(err))

	err = b.PutObject(ctx, "assets", "k", bytes.NewReader([]byte("abc")), 10)
	assert.Error(t, err)
}

func TestMemoryBackend_NamesDoNotAliasCallerMemory(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend(0)

	// Request routers hand out strings backed by a reused buffer.
	buf := []byte("tree")
	require.NoError(t, b.MakeBucket(ctx, unsafe.String(&buf[0], len(buf)), ""))
	copy(buf, "xxxx")

	keyBuf := []byte("a/1")
	for _, key := range []string{"a/1", "a/2", "b/1"} {
		copy(keyBuf, key)
		require.NoError(t, b.PutObject(ctx, "tree", unsafe.String(&keyBuf[0], len(keyBuf)), strings.NewReader("v"), 1))
	}
	copy(keyBuf, "zzz")

	exists, err := b.BucketExists(ctx, "tree")
	require.NoError(t, err)
	assert.True(t, exists)

	page, err := b.ListObjectsPage(ctx, "tree", storage.ListQuery{})
	require.NoError(t, err)
	var keys []string
	for _, obj := range page.Objects {
		keys = append(keys, obj.Key)
	}
	assert.Equal(t, []string{"a/1", "a/2", "b/1"}, keys)
}

func TestMemoryBackend_ListObjectsPage(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend(2)
	require.NoError(t, b.MakeBucket(ctx, "assets", ""))
	for _, key := range []string{"a/1", "a/2", "a/3", "b/1", "c"} {
		require.NoError(t, b.PutObject(ctx, "assets", key, strings.NewReader(key), int64(len(key))))
	}

	t.Run("Paginates", func(t *testing.T) {
		var keys []string
		token := ""
		pages := 0
		for {
			page, err := b.ListObjectsPage(ctx, "assets", storage.ListQuery{ContinuationToken: token})
			require.NoError(t, err)
			pages++
			for _, obj := range page.Objects {
				keys = append(keys, obj.Key)
			}
			if !page.IsTruncated {
				break
			}
			token = page.NextContinuationToken
		}
		assert.Equal(t, 3, pages)
		assert.Equal(t, []string{"a/1", "a/2", "a/3", "b/1", "c"}, keys)
	})

	t.Run("Prefix", func(t *testing.T) {
		page, err := b.ListObjectsPage(ctx, "assets", storage.ListQuery{Prefix: "a/", MaxKeys: 10})
		require.NoError(t, err)
		assert.Len(t, page.Objects, 2)
		assert.True(t, page.IsTruncated)
		assert.Equal(t, int64(3), page.Objects[0].Size)
	})

	t.Run("Delimiter", func(t *testing.T) {
		page, err := b.ListObjectsPage(ctx, "assets", storage.ListQuery{Delimiter: "/"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a/", "b/"}, page.CommonPrefixes)
		assert.True(t, page.IsTruncated)

		next, err := b.ListObjectsPage(ctx, "assets", storage.ListQuery{Delimiter: "/", ContinuationToken: page.NextContinuationToken})
		require.NoError(t, err)
		assert.Empty(t, next.CommonPrefixes)
		require.Len(t, next.Objects, 1)
		assert.Equal(t, "c", next.Objects[0].Key)
		assert.False(t, next.IsTruncated)
	})

	t.Run("MissingBucket", func(t *testing.T) {
		_, err := b.ListObjectsPage(ctx, "other", storage.ListQuery{})
		assert.True(t, storage.IsNoSuchBucket(err))
	})
}

func TestMemoryBackend_RemoveObjectsLimit(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend(0)
	require.NoError(t, b.MakeBucket(ctx, "assets", ""))

	keys := make([]string, storage.MaxDeleteKeys+1)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%d", i)
	}
	_, err := b.RemoveObjects(ctx, "assets", keys)
	assert.Error(t, err)

	res, err := b.RemoveObjects(ctx, "assets", keys[:storage.MaxDeleteKeys])
	require.NoError(t, err)
	assert.Len(t, res.Deleted, storage.MaxDeleteKeys)
}
