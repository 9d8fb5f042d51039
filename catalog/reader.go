package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/poiesic/labelmap/core"
)

// Header names of the catalog CSV. Columns are found by name, so their
// order and any extra columns do not matter.
const (
	CodeColumn        = "Full Code"
	DescriptionColumn = "Full Description"
	CategoryColumn    = "Category Title"
)

const (
	// DefaultBatchSize is the default number of entries handed out per batch
	DefaultBatchSize = 100
)

// Reader parses catalog entries from CSV. Rows without a code or a
// description are skipped and counted.
type Reader struct {
	entries []*core.CatalogEntry
	skipped int
}

// ReadCSV reads every row of r. The Category Title column is optional.
func ReadCSV(r io.Reader, logger *slog.Logger) (*Reader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMalformedCSV)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[cleanHeader(name)] = i
	}
	codeIdx, ok := columns[CodeColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, CodeColumn)
	}
	descIdx, ok := columns[DescriptionColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, DescriptionColumn)
	}
	catIdx, hasCategory := columns[CategoryColumn]

	out := &Reader{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}

		entry := &core.CatalogEntry{
			Code:        field(row, codeIdx),
			Description: field(row, descIdx),
		}
		if hasCategory {
			entry.Category = field(row, catIdx)
		}
		if err := core.ValidateCatalogEntry(entry); err != nil {
			logger.Warn("skipping catalog row", "line", line, "err", err)
			out.skipped++
			continue
		}
		out.entries = append(out.entries, entry)
	}
	return out, nil
}

// Len returns the number of valid entries read.
func (r *Reader) Len() int {
	return len(r.entries)
}

// Skipped returns the number of rows dropped for missing fields.
func (r *Reader) Skipped() int {
	return r.skipped
}

// ForEach calls fn with consecutive batches of at most batchSize entries,
// in file order. Iteration stops on the first error from fn.
// Context cancellation is checked between batches.
func (r *Reader) ForEach(ctx context.Context, batchSize int, fn func([]*core.CatalogEntry) error) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for i := 0; i < len(r.entries); i += batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := min(i+batchSize, len(r.entries))
		if err := fn(r.entries[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func cleanHeader(v string) string {
	return strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
