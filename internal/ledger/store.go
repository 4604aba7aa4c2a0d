// Package ledger owns the persisted ledger document: loading it from the
// key/value collaborator, upgrading old shapes and writing it back whole.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"paytrack/internal/core"
	"paytrack/internal/log"
	"paytrack/internal/storage"
)

const (
	DefaultKey       = "paytrack_v2"
	DefaultLegacyKey = "odeme_takip_v1"
)

// Store loads and saves the ledger document under a fixed key.
type Store struct {
	kv        storage.KeyValueStore
	key       string
	legacyKey string
	now       func() time.Time
	logger    *log.Logger
}

type Option func(*Store)

// WithKeys overrides the storage key and the legacy v1 key. An empty
// legacy key disables the v1 import.
func WithKeys(key, legacyKey string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
		s.legacyKey = legacyKey
	}
}

// WithClock overrides time.Now, used to pick the default month.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentStorage) }
}

func NewStore(kv storage.KeyValueStore, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		key:       DefaultKey,
		legacyKey: DefaultLegacyKey,
		now:       time.Now,
		logger:    log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key the document is written under.
func (s *Store) Key() string { return s.key }

// Load reads the document. Missing, unreadable or malformed data never
// fails: it degrades to a fresh document for the current month.
func (s *Store) Load(ctx context.Context) *core.Document {
	now := s.now()

	raw, ok, err := s.kv.GetItem(ctx, s.key)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read ledger document",
			log.NewFields().WithOperation(log.OpLoad).WithError(err).
				WithErrorType(log.ErrorTypeDatabase).ToSlice()...)
		return NewDocument(now)
	}

	key := s.key
	if !ok && s.legacyKey != "" {
		raw, ok, err = s.kv.GetItem(ctx, s.legacyKey)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to read legacy ledger document",
				log.NewFields().WithOperation(log.OpLoad).WithError(err).ToSlice()...)
			return NewDocument(now)
		}
		key = s.legacyKey
	}
	if !ok {
		s.logger.InfoContext(ctx, "No stored ledger, starting fresh", log.FieldStorageKey, s.key)
		return NewDocument(now)
	}

	doc, dropped, err := Migrate([]byte(raw), now)
	if err != nil {
		s.logger.WarnContext(ctx, "Stored ledger is malformed, starting fresh",
			log.NewFields().WithOperation(log.OpMigrate).WithError(err).
				WithErrorType(log.ErrorTypeCorruption).ToSlice()...)
		return NewDocument(now)
	}
	if dropped > 0 {
		s.logger.WarnContext(ctx, "Dropped invalid expense records", "count", dropped, log.FieldStorageKey, key)
	}
	if key != s.key {
		s.logger.InfoContext(ctx, "Imported legacy ledger", log.FieldStorageKey, key, log.FieldMonth, doc.SelectedMonth)
	}
	return doc
}

// Save writes the full document, overwriting prior content.
func (s *Store) Save(ctx context.Context, doc *core.Document) error {
	doc.SchemaVersion = SchemaVersion
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.kv.SetItem(ctx, s.key, string(body)); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// SetSelectedMonth ensures the bucket for key exists, selects it and saves.
func (s *Store) SetSelectedMonth(ctx context.Context, doc *core.Document, key string) error {
	if _, _, err := core.ParseMonthKey(key); err != nil {
		return err
	}
	doc.EnsureMonth(key)
	doc.SelectedMonth = key
	return s.Save(ctx, doc)
}
