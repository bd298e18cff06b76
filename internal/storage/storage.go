package storage

import "context"

// Object is a stored document: raw bytes plus the metadata declared at
// upload time. Filename may be empty for objects written before it was
// recorded.
type Object struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Store is a blob store keyed by opaque document id.
type Store interface {
	Put(ctx context.Context, id string, data []byte, contentType, filename string) error
	Get(ctx context.Context, id string) (*Object, error)
	Delete(ctx context.Context, id string) error
	// Ready reports whether the backing store is reachable.
	Ready(ctx context.Context) error
}
