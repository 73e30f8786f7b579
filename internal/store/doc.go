// Package store persists extraction results.
//
// FileStore writes the result as indented JSON (output.json by default).
// PostgresStore keeps every result as a jsonb row keyed by a UUID. Multi
// writes to several stores in order and stops at the first failure.
package store
