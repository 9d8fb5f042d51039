// Package pipeline maps drug names to ICD-10 codes end to end.
//
// For each drug it looks in the label cache, then fetches the most recent
// label from the label source, extracts the indications and directions,
// maps the joined indication text with the match engine, and caches the
// result. Bulk runs share an ants worker pool.
package pipeline
