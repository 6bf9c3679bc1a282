// Package storage persists relayed files in blob storage.
package storage

import "context"

// Store is the blob surface the relay depends on: write a named blob and get
// back a stable URL, or read one back.
type Store interface {
	// Upload writes data under name and returns the blob's URL.
	Upload(ctx context.Context, name string, data []byte) (string, error)

	// Download reads the blob stored under name.
	Download(ctx context.Context, name string) ([]byte, error)
}
