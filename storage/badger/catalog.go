package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) (*CatalogRepository, error) {
	return &CatalogRepository{
		backend: backend,
	}, nil
}

// Close releases resources. CatalogRepository has no resources to release.
func (r *CatalogRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CatalogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEntries validates and stores entries in one transaction. An entry
// replaces any stored entry with the same code.
func (r *CatalogRepository) AddEntries(ctx context.Context, entries ...*core.CatalogEntry) error {
	for _, entry := range entries {
		if err := core.ValidateCatalogEntry(entry); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if err := tx.Set(makeCatalogKey(entry.Code), storage.MarshalCatalogEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves an entry by code.
func (r *CatalogRepository) GetEntry(ctx context.Context, code string) (*core.CatalogEntry, error) {
	var entry *core.CatalogEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCatalogKey(code))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalCatalogEntry(val)
			return unmarshalErr
		})
	}, false)
	return entry, err
}

// AllEntries returns every entry ordered by code.
func (r *CatalogRepository) AllEntries(ctx context.Context) ([]*core.CatalogEntry, error) {
	var entries []*core.CatalogEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(catalogEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalCatalogEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of stored entries without reading values.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(catalogEntryPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Clear removes every entry.
func (r *CatalogRepository) Clear(ctx context.Context) error {
	return r.backend.DeletePrefix(catalogEntryPrefix)
}
