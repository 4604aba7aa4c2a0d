package storage

import "context"

// KeyValueStore is the persistence collaborator: an opaque get/set-by-key
// string store. GetItem reports ok=false when the key was never written.
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
}
