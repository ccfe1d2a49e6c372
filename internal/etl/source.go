package etl

import (
	"context"

	"go.uber.org/zap"
)

// ── Source ──────────────────────────────────────────────────
// A Source executes read-only queries against the relational side.
// Implementations live in internal/dbclient.

// Source is the interface every relational source must implement.
type Source interface {
	// Query executes query once and returns its columns and rows. Any
	// per-execution resource (cursor) is released before returning.
	Query(ctx context.Context, query string) (*QueryResult, error)

	// Close releases the connection.
	Close() error
}

// SourceOpener establishes the source connection for one pipeline pass.
type SourceOpener func(ctx context.Context) (Source, error)

// RunQuery executes query against src. Failures are logged together with the
// query text and absorbed: the caller receives nil and decides to skip.
func RunQuery(ctx context.Context, src Source, query string, log *zap.Logger) *QueryResult {
	result, err := src.Query(ctx, query)
	if err != nil {
		log.Error("query execution failed",
			zap.Error(err),
			zap.String("query", query),
		)
		return nil
	}
	return result
}
