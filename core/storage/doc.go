// Package storage provides the transport layer for S3-compatible object stores.
//
// It hides the provider SDKs behind the Backend interface: one call per
// provider request, with no retries, no pagination loops and no batching.
// Those policies live in core/objectstore.
//
// # Drivers
//
//   - s3: AWS SDK for Go v2. Works against AWS S3 and any S3-protocol
//     service (MinIO, Ceph, R2) with path-style addressing.
//   - minio: the MinIO Go client.
//   - memory: an in-process store used for tests and dry runs.
//
// # Errors
//
// Provider errors are returned unmodified. IsNotFound, IsNoSuchBucket,
// IsNoSuchKey, IsBucketAlreadyExists, StatusCode and ErrorCode read the
// provider's status and error code out of whichever SDK produced them.
//
// # Usage
//
//	backend, err := storage.NewBackend(ctx, cfg.Storage)
//	exists, err := backend.BucketExists(ctx, "assets")
package storage
