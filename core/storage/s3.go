package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyendpoints "github.com/aws/smithy-go/endpoints"
)

// S3API defines the subset of the AWS S3 client the s3 driver uses.
// This allows mocking in tests.
type S3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Backend implements Backend with the AWS SDK for Go v2.
type S3Backend struct {
	client   S3API
	uploader *manager.Uploader
	region   string
}

// NewS3Backend builds an S3 client from cfg. Static credentials are used
// when both keys are set, otherwise the default AWS credential chain.
func NewS3Backend(ctx context.Context, cfg Config) (*S3Backend, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(timeout(cfg))),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if endpoint := cfg.URL(); endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if cfg.PathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if cfg.BucketIsEndpoint {
		u, err := url.Parse(cfg.URL())
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("bucket_is_endpoint requires a valid endpoint, got %q", cfg.Endpoint)
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.EndpointResolverV2 = bucketEndpointResolver{endpoint: *u}
		})
	}

	return NewS3BackendWithClient(s3.NewFromConfig(awsCfg, s3Opts...), cfg.Region), nil
}

// NewS3BackendWithClient wraps a pre-configured client. Used by tests.
func NewS3BackendWithClient(client S3API, region string) *S3Backend {
	return &S3Backend{
		client:   client,
		uploader: manager.NewUploader(client),
		region:   region,
	}
}

// bucketEndpointResolver sends every request to the configured endpoint
// as-is, for endpoints that already address one bucket.
type bucketEndpointResolver struct {
	endpoint url.URL
}

func (r bucketEndpointResolver) ResolveEndpoint(_ context.Context, _ s3.EndpointParameters) (smithyendpoints.Endpoint, error) {
	return smithyendpoints.Endpoint{URI: r.endpoint}, nil
}

// BucketExists issues HeadBucket. A 404 means the bucket is absent.
func (b *S3Backend) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MakeBucket creates a bucket. us-east-1 takes no location constraint.
func (b *S3Backend) MakeBucket(ctx context.Context, bucket, location string) error {
	if location == "" {
		location = b.region
	}
	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if location != "" && location != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(location),
		}
	}
	_, err := b.client.CreateBucket(ctx, input)
	return err
}

// RemoveBucket deletes an empty bucket.
func (b *S3Backend) RemoveBucket(ctx context.Context, bucket string) error {
	_, err := b.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(bucket),
	})
	return err
}

// PutObject uploads through the transfer manager, which buffers small
// bodies into a single PutObject and switches to multipart for large or
// unknown-length ones.
func (b *S3Backend) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	_, err := b.uploader.Upload(ctx, input)
	return err
}

// GetObject opens an object for reading.
func (b *S3Backend) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ListObjectsPage issues one ListObjectsV2 request.
func (b *S3Backend) ListObjectsPage(ctx context.Context, bucket string, query ListQuery) (*ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if query.Prefix != "" {
		input.Prefix = aws.String(query.Prefix)
	}
	if query.Delimiter != "" {
		input.Delimiter = aws.String(query.Delimiter)
	}
	if query.ContinuationToken != "" {
		input.ContinuationToken = aws.String(query.ContinuationToken)
	}
	if query.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(query.MaxKeys))
	}

	resp, err := b.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, err
	}

	page := &ListPage{
		Objects:               make([]ObjectInfo, 0, len(resp.Contents)),
		IsTruncated:           aws.ToBool(resp.IsTruncated),
		NextContinuationToken: aws.ToString(resp.NextContinuationToken),
	}
	for _, obj := range resp.Contents {
		page.Objects = append(page.Objects, ObjectInfo{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}
	for _, p := range resp.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, aws.ToString(p.Prefix))
	}
	return page, nil
}

// RemoveObjects issues one DeleteObjects request in verbose mode so the
// response lists every deleted key.
func (b *S3Backend) RemoveObjects(ctx context.Context, bucket string, keys []string) (*DeleteResult, error) {
	if len(keys) > MaxDeleteKeys {
		return nil, fmt.Errorf("cannot delete %d keys in one request, limit is %d", len(keys), MaxDeleteKeys)
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	resp, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(false),
		},
	})
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{}
	for _, d := range resp.Deleted {
		result.Deleted = append(result.Deleted, aws.ToString(d.Key))
	}
	for _, e := range resp.Errors {
		result.Errors = append(result.Errors, DeleteError{
			Key:     aws.ToString(e.Key),
			Code:    aws.ToString(e.Code),
			Message: aws.ToString(e.Message),
		})
	}
	return result, nil
}

var _ Backend = (*S3Backend)(nil)
