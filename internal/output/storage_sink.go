package output

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"volumegen/internal/port"
)

// StorageSink uploads the document to object storage.
// It implements port.OutputSink.
type StorageSink struct {
	storage port.ObjectStorage
	bucket  string
	key     string
}

// NewStorageSink creates a sink that uploads to bucket/key.
func NewStorageSink(storage port.ObjectStorage, bucket, key string) *StorageSink {
	return &StorageSink{storage: storage, bucket: bucket, key: key}
}

func (s *StorageSink) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

func (s *StorageSink) Write(ctx context.Context, data []byte) error {
	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         s.key,
		Body:        bytes.NewReader(data),
		ContentType: "application/json; charset=utf-8",
		Size:        int64(len(data)),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", s.Name(), err)
	}
	log.Printf("output.StorageSink: uploaded %d bytes to %s (etag %s)", len(data), out.Location, out.ETag)
	return nil
}
