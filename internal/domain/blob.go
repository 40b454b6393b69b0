package domain

import (
	"context"
	"io"
)

// BlobWriter uploads objects to blob storage.
type BlobWriter interface {
	// Put uploads data to the given path with the given content type.
	Put(ctx context.Context, path string, data io.Reader, contentType string) error

	// PutMultipart uploads data in parts of partSize bytes, for payloads too
	// large to send in one request.
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}
