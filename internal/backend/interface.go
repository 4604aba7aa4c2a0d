// Package backend selects and builds the key/value store behind the ledger.
package backend

import (
	"context"

	"paytrack/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function
type Result struct {
	Store   storage.KeyValueStore
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for store creation
type Config struct {
	Type         Type
	SQLiteDBPath string
}

// Type represents the kind of backend
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
