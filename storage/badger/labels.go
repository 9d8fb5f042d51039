package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/storage"
)

// DefaultLabelTTL is how long a cached label mapping stays live.
const DefaultLabelTTL = time.Hour

// LabelRepository implements storage.LabelRepository for BadgerDB.
// Expiry is delegated to badger's per-entry TTL.
type LabelRepository struct {
	backend *Backend
	ttl     time.Duration
}

var _ storage.LabelRepository = (*LabelRepository)(nil)

// NewLabelRepository creates a new LabelRepository. A ttl of zero or less
// keeps entries until they are deleted.
func NewLabelRepository(backend *Backend, ttl time.Duration) (*LabelRepository, error) {
	return &LabelRepository{
		backend: backend,
		ttl:     ttl,
	}, nil
}

// Close releases resources. LabelRepository has no resources to release.
func (r *LabelRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *LabelRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveLabel stores the mapping, keeping the original CreatedAt of a live
// entry for the same drug.
func (r *LabelRepository) SaveLabel(ctx context.Context, label *core.LabelMapping) error {
	if err := core.ValidateLabelMapping(label); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeLabelKey(label.Drug)

		old, err := readLabel(tx, key)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		now := time.Now().UTC()
		label.Id = core.LabelID(label.Drug)
		switch {
		case old != nil:
			label.CreatedAt = old.CreatedAt
		case label.CreatedAt.IsZero():
			label.CreatedAt = now
		}
		label.UpdatedAt = now

		entry := badger.NewEntry(key, storage.MarshalLabelMapping(label))
		if r.ttl > 0 {
			entry = entry.WithTTL(r.ttl)
		}
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetLabel retrieves the live mapping for a drug.
func (r *LabelRepository) GetLabel(ctx context.Context, drug string) (*core.LabelMapping, error) {
	var label *core.LabelMapping
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		label, err = readLabel(tx, makeLabelKey(drug))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return label, nil
}

// ListLabels returns live mappings ordered by drug name.
func (r *LabelRepository) ListLabels(ctx context.Context, offset, limit int) ([]*core.LabelMapping, error) {
	if offset < 0 || limit < 1 {
		return nil, fmt.Errorf("%w: offset %d, limit %d", storage.ErrInvalidQuery, offset, limit)
	}

	labels := make([]*core.LabelMapping, 0, limit)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(labelRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		skipped := 0
		for iter.Rewind(); iter.Valid() && len(labels) < limit; iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if skipped < offset {
				skipped++
				continue
			}
			err := iter.Item().Value(func(val []byte) error {
				label, err := storage.UnmarshalLabelMapping(val)
				if err != nil {
					return err
				}
				labels = append(labels, label)
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
	return labels, nil
}

// DeleteLabel removes the mapping for a drug.
func (r *LabelRepository) DeleteLabel(ctx context.Context, drug string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeLabelKey(drug)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readLabel reads a label within a transaction.
// Returns storage.ErrNotFound if the key is missing or expired.
func readLabel(tx *badger.Txn, key []byte) (*core.LabelMapping, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var label *core.LabelMapping
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		label, unmarshalErr = storage.UnmarshalLabelMapping(val)
		return unmarshalErr
	})
	return label, err
}
