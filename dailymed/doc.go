// Package dailymed is a client for the DailyMed drug label service.
//
// It searches labels by drug name, downloads SPL XML documents, and fetches
// the rendered label page used when a document's XML has no usable
// indications section.
package dailymed
