// Package store implements the client for the hosted backing store the
// dashboard reads from — a PostgREST-style HTTP API with idempotent
// upserts, bulk inserts, and delete-by-filter.
//
// Pushes are hash-gated: every catalog item and order-book detail carries a
// content hash tracked in the snapshot's SyncState, and only rows whose
// hash moved are uploaded. Steady-state cycles where little changed upload
// a small fraction of total rows, which is the dominant cost control of
// the whole system.
package store
