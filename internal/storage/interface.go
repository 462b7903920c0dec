// Package storage holds the blob backends behind the upload side-channel.
// Node rows only ever see the URL a backend returns.
package storage

import (
	"context"
	"fmt"
	"io"
)

// BlobStore stores opaque binary objects and hands back a fetchable URL
type BlobStore interface {
	// Put stores the object under key and returns its public URL
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
	Name() string
}

// Error wraps a backend failure with the operation and key involved
type Error struct {
	Backend string
	Op      string
	Key     string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s storage: %s %s: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
