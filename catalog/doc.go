// Package catalog loads the ICD-10 diagnosis catalog from CSV into the
// catalog store.
//
// The CSV must have "Full Code" and "Full Description" columns and may
// have a "Category Title" column. Entries are written in batches, a
// conflicting batch is retried with backoff, and a checkpoint is saved
// once every row is stored. A later load is skipped while the checkpoint
// exists and the store is not empty, unless Config.Force is set.
package catalog
