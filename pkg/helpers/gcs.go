package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// UploadObject uploads bytes from r into bucket/objectPath with the provided contentType
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) error {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // payloads are small, single request
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

// GCSBucket stores blobs under a single bucket.
type GCSBucket struct {
	Client *storage.Client
	Bucket string
}

// NewGCSBucket returns nil when storage is not configured so callers can skip archiving.
func NewGCSBucket(client *storage.Client, bucket string) *GCSBucket {
	if client == nil || bucket == "" {
		return nil
	}
	return &GCSBucket{Client: client, Bucket: bucket}
}

func (b *GCSBucket) Put(ctx context.Context, objectPath, contentType string, body []byte) error {
	if b == nil {
		return fmt.Errorf("gcs not configured")
	}
	return UploadObject(ctx, b.Client, b.Bucket, objectPath, contentType, bytes.NewReader(body))
}
