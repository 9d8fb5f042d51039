package storage

import (
	"context"

	"github.com/poiesic/labelmap/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CatalogRepository stores the diagnosis catalog.
type CatalogRepository interface {
	Repository
	// AddEntries validates and stores entries, replacing any entry with the
	// same code.
	AddEntries(ctx context.Context, entries ...*core.CatalogEntry) error

	// GetEntry retrieves an entry by code.
	// Returns ErrNotFound if the code is not in the catalog.
	GetEntry(ctx context.Context, code string) (*core.CatalogEntry, error)

	// AllEntries returns the whole catalog ordered by code.
	AllEntries(ctx context.Context) ([]*core.CatalogEntry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// LabelRepository caches label mappings by drug name. Entries expire
// after the repository's TTL.
type LabelRepository interface {
	Repository
	// SaveLabel stores or replaces the mapping for label.Drug.
	// Sets Id and the timestamps.
	SaveLabel(ctx context.Context, label *core.LabelMapping) error

	// GetLabel retrieves the mapping for a drug name, ignoring case.
	// Returns ErrNotFound if the entry is missing or expired.
	GetLabel(ctx context.Context, drug string) (*core.LabelMapping, error)

	// ListLabels returns up to limit live mappings ordered by drug name,
	// skipping the first offset.
	ListLabels(ctx context.Context, offset, limit int) ([]*core.LabelMapping, error)

	// DeleteLabel removes the mapping for a drug name.
	// Returns ErrNotFound if there is none.
	DeleteLabel(ctx context.Context, drug string) error
}

// CheckpointRepository records completed loads.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint under its name.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint returns the checkpoint for name, or nil if none exists.
	LoadCheckpoint(ctx context.Context, name string) (*core.Checkpoint, error)
}
