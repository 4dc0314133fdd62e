// Package objectstore is the policy layer that sits on top of a storage.Backend.
//
// The Client is the single entry point. It normalizes bucket names and
// validates keys before any request is issued, encodes and decodes object
// bodies with the configured codec, drains paginated listings, splits bulk
// deletes into provider sized chunks and provisions buckets idempotently.
//
// # Components
//
//   - Lister: follows continuation tokens until a listing is exhausted.
//   - Deleter: sends chunks of at most 1000 keys in parallel.
//   - BucketManager: probe then create, treating "already exists" as success.
//   - Client: composes the above with a naming.Normalizer and a codec.Codec.
//
// # Bucket provisioning
//
// Put and PutStream require the bucket to exist and surface the provider's
// not-found error otherwise. PutAutoCreate and PutStreamAutoCreate ensure the
// bucket first.
//
// # Usage
//
//	client, err := objectstore.NewFromConfig(ctx, cfg.Storage, objectstore.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	if err := client.PutAutoCreate(ctx, "reports", "2024/q1.json", report); err != nil {
//	    return err
//	}
package objectstore
