// Package mediastore is the media storage collaborator: the application only
// records metadata, the store owns the bytes.
package mediastore

import (
	"context"
	"io"
)

// Store uploads media bytes and returns the public URL they are served from.
type Store interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// NoOpStore accepts every upload without storing bytes. Used in tests.
type NoOpStore struct{}

func (NoOpStore) Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	return "/media/" + key, nil
}

func (NoOpStore) Delete(ctx context.Context, key string) error { return nil }
