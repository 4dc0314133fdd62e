package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"s3-client/core/codec"
	"s3-client/core/metrics"
	"s3-client/core/naming"
	"s3-client/core/storage"

	"go.uber.org/zap"
)

// DefaultDelimiter is used by ListByDelimiter when none is given.
const DefaultDelimiter = "/"

// Client is the object store facade. It is safe for concurrent use and
// its configuration is fixed at construction.
type Client struct {
	backend  storage.Backend
	codec    codec.Codec
	names    naming.Normalizer
	logger   *zap.Logger
	observer metrics.Observer

	pageSize          int
	deleteConcurrency int

	lister  *Lister
	deleter *Deleter
	buckets *BucketManager
}

// Option configures a Client.
type Option func(*Client)

// WithCodec sets the body codec. Defaults to codec.TextCodec.
func WithCodec(c codec.Codec) Option {
	return func(cl *Client) { cl.codec = c }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithObserver records every transport call on o.
func WithObserver(o metrics.Observer) Option {
	return func(cl *Client) { cl.observer = o }
}

// WithNormalizer sets the bucket and key rules.
func WithNormalizer(n naming.Normalizer) Option {
	return func(cl *Client) { cl.names = n }
}

// WithPageSize caps keys per listing request.
func WithPageSize(n int) Option {
	return func(cl *Client) { cl.pageSize = n }
}

// WithDeleteConcurrency caps in-flight delete requests. 0 means unlimited.
func WithDeleteConcurrency(n int) Option {
	return func(cl *Client) { cl.deleteConcurrency = n }
}

// New creates a Client over backend.
func New(backend storage.Backend, opts ...Option) *Client {
	c := &Client{
		backend:  backend,
		codec:    codec.TextCodec{},
		logger:   zap.NewNop(),
		observer: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.observer == nil {
		c.observer = metrics.Nop{}
	}

	c.lister = NewLister(backend, c.pageSize, c.logger)
	c.deleter = NewDeleter(backend, c.deleteConcurrency, c.logger)
	c.buckets = NewBucketManager(backend, c.logger)
	return c
}

// NewFromConfig builds the backend and codec described by cfg.
// opts are applied after the settings derived from cfg.
func NewFromConfig(ctx context.Context, cfg storage.Config, opts ...Option) (*Client, error) {
	mode, err := codec.ParseMode(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	bodyCodec, err := codec.New(mode)
	if err != nil {
		return nil, err
	}
	policy, err := naming.ParseLongNamePolicy(cfg.LongBucketNames)
	if err != nil {
		return nil, err
	}
	backend, err := storage.NewBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	base := []Option{
		WithCodec(bodyCodec),
		WithNormalizer(naming.Normalizer{Policy: policy}),
		WithPageSize(cfg.PageSize),
		WithDeleteConcurrency(cfg.DeleteConcurrency),
	}
	return New(backend, append(base, opts...)...), nil
}

// Mode reports the body encoding of the client.
func (c *Client) Mode() codec.Mode {
	return c.codec.Mode()
}

// NormalizeBucket exposes the client's bucket rules.
func (c *Client) NormalizeBucket(raw string) (string, error) {
	return c.names.Bucket(raw)
}

func (c *Client) target(bucket, key string) (string, string, error) {
	b, err := c.names.Bucket(bucket)
	if err != nil {
		return "", "", err
	}
	k, err := c.names.Key(key)
	if err != nil {
		return "", "", err
	}
	return b, k, nil
}

func (c *Client) observe(op string, start time.Time, bytes int64, err error) {
	c.observer.Observe(op, bytes, err, time.Since(start))
}

// Put encodes body with the client codec and uploads it.
// The bucket must already exist.
func (c *Client) Put(ctx context.Context, bucket, key string, body any) error {
	b, k, err := c.target(bucket, key)
	if err != nil {
		return err
	}
	data, err := c.codec.Encode(body)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", b, k, err)
	}
	return c.upload(ctx, "put", b, k, bytes.NewReader(data), int64(len(data)))
}

// PutAutoCreate is Put preceded by bucket provisioning.
func (c *Client) PutAutoCreate(ctx context.Context, bucket, key string, body any) error {
	b, k, err := c.target(bucket, key)
	if err != nil {
		return err
	}
	data, err := c.codec.Encode(body)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", b, k, err)
	}
	if err := c.ensureBucket(ctx, b, ""); err != nil {
		return err
	}
	return c.upload(ctx, "put", b, k, bytes.NewReader(data), int64(len(data)))
}

// PutStream uploads raw bytes from r without encoding.
// A negative size means the length is unknown.
func (c *Client) PutStream(ctx context.Context, bucket, key string, r io.Reader, size int64) error {
	b, k, err := c.target(bucket, key)
	if err != nil {
		return err
	}
	return c.upload(ctx, "put_stream", b, k, r, size)
}

// PutStreamAutoCreate is PutStream preceded by bucket provisioning.
func (c *Client) PutStreamAutoCreate(ctx context.Context, bucket, key string, r io.Reader, size int64) error {
	b, k, err := c.target(bucket, key)
	if err != nil {
		return err
	}
	if err := c.ensureBucket(ctx, b, ""); err != nil {
		return err
	}
	return c.upload(ctx, "put_stream", b, k, r, size)
}

func (c *Client) upload(ctx context.Context, op, bucket, key string, r io.Reader, size int64) (err error) {
	start := time.Now()
	defer func() { c.observe(op, start, max(size, 0), err) }()

	c.logger.Debug("Uploading object",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int64("size", size))
	return c.backend.PutObject(ctx, bucket, key, r, size)
}

// Get downloads an object and decodes it with the client codec.
func (c *Client) Get(ctx context.Context, bucket, key string) (any, error) {
	data, err := c.GetBuffer(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	v, err := c.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", bucket, key, err)
	}
	return v, nil
}

// GetStream opens an object for reading. The caller must close the stream.
// The body is not decoded.
func (c *Client) GetStream(ctx context.Context, bucket, key string) (rc io.ReadCloser, err error) {
	b, k, err := c.target(bucket, key)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { c.observe("get_stream", start, 0, err) }()

	c.logger.Debug("Opening object stream", zap.String("bucket", b), zap.String("key", k))
	return c.backend.GetObject(ctx, b, k)
}

// GetBuffer downloads the raw bytes of an object.
func (c *Client) GetBuffer(ctx context.Context, bucket, key string) (data []byte, err error) {
	b, k, err := c.target(bucket, key)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { c.observe("get", start, int64(len(data)), err) }()

	c.logger.Debug("Downloading object", zap.String("bucket", b), zap.String("key", k))
	rc, err := c.backend.GetObject(ctx, b, k)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", b, k, err)
	}
	return data, nil
}

// ListObjects returns every key under prefix.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string) (keys []string, err error) {
	b, err := c.names.Bucket(bucket)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { c.observe("list", start, 0, err) }()

	return c.lister.Keys(ctx, b, prefix)
}

// ListObjectsWithStats returns every object under prefix with its size and
// modification time.
func (c *Client) ListObjectsWithStats(ctx context.Context, bucket, prefix string) (objects []storage.ObjectInfo, err error) {
	b, err := c.names.Bucket(bucket)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { c.observe("list_stats", start, 0, err) }()

	return c.lister.ListAll(ctx, b, prefix)
}

// ListByDelimiter returns the top level common prefixes of bucket.
// Only the first page is read.
func (c *Client) ListByDelimiter(ctx context.Context, bucket, delimiter string) (prefixes []string, err error) {
	b, err := c.names.Bucket(bucket)
	if err != nil {
		return nil, err
	}
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	start := time.Now()
	defer func() { c.observe("list_prefixes", start, 0, err) }()

	return c.lister.CommonPrefixes(ctx, b, "", delimiter)
}

// DeleteObjects removes keys from bucket in parallel chunks.
// Every key is validated before the first request.
func (c *Client) DeleteObjects(ctx context.Context, bucket string, keys []string) (*DeletionReport, error) {
	b, err := c.names.Bucket(bucket)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if _, err := c.names.Key(key); err != nil {
			return nil, err
		}
	}
	return c.deleteKeys(ctx, b, keys)
}

// DeletePrefix lists every key under prefix and deletes them.
func (c *Client) DeletePrefix(ctx context.Context, bucket, prefix string) (*DeletionReport, error) {
	b, err := c.names.Bucket(bucket)
	if err != nil {
		return nil, err
	}
	keys, err := c.lister.Keys(ctx, b, prefix)
	if err != nil {
		return nil, err
	}
	return c.deleteKeys(ctx, b, keys)
}

func (c *Client) deleteKeys(ctx context.Context, bucket string, keys []string) (report *DeletionReport, err error) {
	start := time.Now()
	defer func() {
		c.observe("delete", start, 0, err)
		if report != nil {
			c.observer.ObserveDeleted(report.Deleted)
		}
	}()

	report, err = c.deleter.DeleteAll(ctx, bucket, keys)
	if err == nil && report.Requested > 0 {
		c.logger.Info("Objects deleted",
			zap.String("bucket", bucket),
			zap.Int("deleted", report.Deleted),
			zap.Int("chunks", report.Chunks))
	}
	return report, err
}

// CreateBucket provisions bucket. An existing bucket is not an error.
// An empty location uses the configured region.
func (c *Client) CreateBucket(ctx context.Context, bucket, location string) error {
	b, err := c.names.Bucket(bucket)
	if err != nil {
		return err
	}
	return c.ensureBucket(ctx, b, location)
}

func (c *Client) ensureBucket(ctx context.Context, bucket, location string) (err error) {
	start := time.Now()
	defer func() { c.observe("ensure_bucket", start, 0, err) }()

	return c.buckets.Ensure(ctx, bucket, location)
}

// DeleteBucket removes an empty bucket.
func (c *Client) DeleteBucket(ctx context.Context, bucket string) (err error) {
	b, err := c.names.Bucket(bucket)
	if err != nil {
		return err
	}
	start := time.Now()
	defer func() { c.observe("delete_bucket", start, 0, err) }()

	return c.buckets.Delete(ctx, b)
}

// BucketExists probes bucket.
func (c *Client) BucketExists(ctx context.Context, bucket string) (exists bool, err error) {
	b, err := c.names.Bucket(bucket)
	if err != nil {
		return false, err
	}
	start := time.Now()
	defer func() { c.observe("bucket_exists", start, 0, err) }()

	return c.buckets.Exists(ctx, b)
}
