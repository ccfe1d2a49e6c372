package etl

import "context"

// ── Destination ────────────────────────────────────────────
// A Destination bulk-loads records into a document store.
// The production implementation is the MongoDB writer in internal/dbclient.

// Destination writes records to a target system.
type Destination interface {
	// InsertMany appends records to the named collection and reports how many
	// were accepted. There is no upsert and no dedup.
	InsertMany(ctx context.Context, collection string, records []Record) (int, error)

	// Close releases the client.
	Close(ctx context.Context) error
}

// DestinationOpener establishes the destination client for one pipeline pass.
type DestinationOpener func(ctx context.Context) (Destination, error)
