package objectstore

import (
	"context"
	"errors"

	"s3-client/core/storage"

	"go.uber.org/zap"
)

// ErrBrokenCursor is returned when a truncated page carries no continuation token.
var ErrBrokenCursor = errors.New("listing truncated without continuation token")

// Lister drains cursor based listings.
type Lister struct {
	backend  storage.Backend
	pageSize int
	logger   *zap.Logger
}

// NewLister creates a Lister. A pageSize of 0 leaves the page size to the provider.
func NewLister(backend storage.Backend, pageSize int, logger *zap.Logger) *Lister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lister{backend: backend, pageSize: pageSize, logger: logger}
}

// ListAll returns every object under prefix, in provider order.
// Pages are requested one after another. Any failed page discards what was
// accumulated so far.
func (l *Lister) ListAll(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	var (
		objects []storage.ObjectInfo
		token   string
		pages   int
	)
	for {
		page, err := l.backend.ListObjectsPage(ctx, bucket, storage.ListQuery{
			Prefix:            prefix,
			ContinuationToken: token,
			MaxKeys:           l.pageSize,
		})
		if err != nil {
			return nil, err
		}
		pages++
		objects = append(objects, page.Objects...)

		if !page.IsTruncated {
			break
		}
		if page.NextContinuationToken == "" {
			return nil, ErrBrokenCursor
		}
		token = page.NextContinuationToken
	}

	l.logger.Debug("Listing drained",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.Int("pages", pages),
		zap.Int("objects", len(objects)))

	if objects == nil {
		objects = []storage.ObjectInfo{}
	}
	return objects, nil
}

// Keys is ListAll projected onto object keys.
func (l *Lister) Keys(ctx context.Context, bucket, prefix string) ([]string, error) {
	objects, err := l.ListAll(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// CommonPrefixes issues a single delimited listing request and returns its
// common prefixes. It does not follow continuation tokens.
func (l *Lister) CommonPrefixes(ctx context.Context, bucket, prefix, delimiter string) ([]string, error) {
	page, err := l.backend.ListObjectsPage(ctx, bucket, storage.ListQuery{
		Prefix:    prefix,
		Delimiter: delimiter,
		MaxKeys:   l.pageSize,
	})
	if err != nil {
		return nil, err
	}
	if page.CommonPrefixes == nil {
		return []string{}, nil
	}
	return page.CommonPrefixes, nil
}
