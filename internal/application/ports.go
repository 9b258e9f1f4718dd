package application

import "context"

// EmailPublisher enqueues mailer.EmailJob payloads; *helpers.RabbitPublisher satisfies it.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// BlobStore keeps raw payloads; *helpers.GCSBucket satisfies it.
type BlobStore interface {
	Put(ctx context.Context, objectPath, contentType string, body []byte) error
}
