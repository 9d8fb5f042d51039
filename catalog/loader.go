package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/retry"
	"github.com/poiesic/labelmap/storage"
)

// CheckpointName is the checkpoint recorded after a complete load.
const CheckpointName = "catalog"

// Config holds configuration for a catalog load.
type Config struct {
	// BatchSize is the number of entries written per transaction
	BatchSize int

	// ReportInterval is how often to report progress (number of entries)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for a conflicting batch write
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Force reloads even when a checkpoint says the catalog is loaded
	Force bool

	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 1000,
		MaxRetries:     3,
		RetryDelay:     100 * time.Millisecond,
	}
}

// Loader writes a catalog CSV into the catalog store.
type Loader struct {
	repo        storage.CatalogRepository
	checkpoints storage.CheckpointRepository
	config      *Config
	progress    io.Writer
	logger      *slog.Logger
}

// NewLoader creates a new loader.
// progress: where to write progress output (typically os.Stderr); nil discards it
func NewLoader(repo storage.CatalogRepository, checkpoints storage.CheckpointRepository, config *Config, progress io.Writer) (*Loader, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointsRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{
		repo:        repo,
		checkpoints: checkpoints,
		config:      config,
		progress:    progress,
		logger:      logger.With("component", "catalog-loader"),
	}, nil
}

// Load reads the CSV file at path into the store.
func (l *Loader) Load(ctx context.Context, path string) (*core.Checkpoint, error) {
	if cp, ok, err := l.alreadyLoaded(ctx); err != nil || ok {
		return cp, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return l.load(ctx, f, path)
}

// LoadReader reads a catalog CSV from r into the store. source is
// recorded in the checkpoint.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader, source string) (*core.Checkpoint, error) {
	if cp, ok, err := l.alreadyLoaded(ctx); err != nil || ok {
		return cp, err
	}
	return l.load(ctx, r, source)
}

// alreadyLoaded reports whether a checkpoint exists and the store holds
// entries. Force always reloads.
func (l *Loader) alreadyLoaded(ctx context.Context) (*core.Checkpoint, bool, error) {
	if l.config.Force {
		return nil, false, nil
	}

	cp, err := l.checkpoints.LoadCheckpoint(ctx, CheckpointName)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if cp == nil {
		return nil, false, nil
	}

	count, err := l.repo.Count(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count catalog: %w", err)
	}
	if count == 0 {
		return nil, false, nil
	}

	l.logger.Info("catalog already loaded", "entries", count, "source", cp.Source)
	fmt.Fprintf(l.progress, "Catalog already loaded (%d entries from %s)\n", count, cp.Source)
	return cp, true, nil
}

func (l *Loader) load(ctx context.Context, r io.Reader, source string) (*core.Checkpoint, error) {
	rows, err := ReadCSV(r, l.logger)
	if err != nil {
		return nil, err
	}
	total := rows.Len()
	if total == 0 {
		return nil, fmt.Errorf("%w: no usable rows in %s", core.ErrEmptyCatalog, source)
	}

	if l.config.Force {
		if err := l.repo.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear catalog: %w", err)
		}
	}

	fmt.Fprintf(l.progress, "Loading %d catalog entries (batch size: %d)\n", total, l.config.BatchSize)

	tracker := NewProgressTracker(l.progress, total, l.config.ReportInterval)
	tracker.Start()

	written := 0
	err = rows.ForEach(ctx, l.config.BatchSize, func(batch []*core.CatalogEntry) error {
		err := retry.Do(ctx, func() error {
			err := l.repo.AddEntries(ctx, batch...)
			if err != nil && !errors.Is(err, badger.ErrConflict) {
				return retry.Permanent(err)
			}
			return err
		}, l.config.MaxRetries, l.config.RetryDelay)
		if err != nil {
			return fmt.Errorf("failed to write batch at entry %d: %w", written, err)
		}

		written += len(batch)
		tracker.Update(written)
		return nil
	})
	if err != nil {
		return nil, err
	}

	tracker.Finish()

	cp := &core.Checkpoint{Name: CheckpointName, Source: source, Count: written}
	if err := l.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
		return nil, fmt.Errorf("failed to save checkpoint: %w", err)
	}

	elapsed := tracker.Elapsed()
	l.logger.Info("catalog loaded", "entries", written, "skipped", rows.Skipped(), "elapsed", elapsed)
	fmt.Fprintf(l.progress, "Catalog load complete. Wrote %d entries in %v\n", written, elapsed.Round(time.Millisecond))
	return cp, nil
}
