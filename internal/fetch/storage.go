package fetch

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"

	"volumegen/internal/domain"
	"volumegen/internal/port"
)

var errInvalidObjectURL = errors.New("object URL must look like s3://bucket/key")

// StorageFetcher reads s3://bucket/key sources from object storage.
// It implements port.Fetcher.
type StorageFetcher struct {
	storage port.ObjectStorage
}

// NewStorageFetcher creates a StorageFetcher.
func NewStorageFetcher(storage port.ObjectStorage) *StorageFetcher {
	return &StorageFetcher{storage: storage}
}

func (f *StorageFetcher) Fetch(ctx context.Context, source string) (*domain.RawDocument, error) {
	bucket, key, err := SplitObjectURL(source)
	if err != nil {
		return nil, &Error{Source: source, Err: err}
	}

	data, err := f.storage.Download(ctx, bucket, key)
	if err != nil {
		return nil, &Error{Source: source, Err: err}
	}

	log.Printf("fetch.StorageFetcher: downloaded %d bytes from %s", len(data), source)
	return &domain.RawDocument{Body: data, Source: source}, nil
}

// SplitObjectURL splits s3://bucket/key into its bucket and key.
func SplitObjectURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", errInvalidObjectURL
	}
	return u.Host, key, nil
}
