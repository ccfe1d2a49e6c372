package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ora2mongo/internal/etl"
)

// SQLSource is the shared implementation for every database/sql driver.
type SQLSource struct {
	driverName string
	db         *sql.DB
	log        *zap.Logger
}

// newSQLSource opens a pool for driverName. sql.Open does not dial; callers
// ping before use.
func newSQLSource(driverName, dsn string, log *zap.Logger) (*SQLSource, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	// One pass runs one query at a time.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	return NewSQLSource(driverName, db, log), nil
}

// NewSQLSource wraps an already opened pool.
func NewSQLSource(driverName string, db *sql.DB, log *zap.Logger) *SQLSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLSource{driverName: driverName, db: db, log: log.Named(driverName)}
}

// Ping verifies connectivity.
func (s *SQLSource) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Query executes query once and returns its column names together with every
// row. The cursor is closed before returning, on success or failure.
func (s *SQLSource) Query(ctx context.Context, query string) (*etl.QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, normalizeQuery(query))
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	binary := make([]bool, len(types))
	for i, ct := range types {
		binary[i] = isBinaryType(ct.DatabaseTypeName())
	}

	result := &etl.QueryResult{Columns: cols}
	numCols := len(cols)
	for rows.Next() {
		values := make([]any, numCols)
		ptrs := make([]any, numCols)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(result.Rows), err)
		}
		for i, v := range values {
			values[i] = formatValue(v, binary[i])
		}
		result.Rows = append(result.Rows, etl.Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}

	s.log.Debug("query executed",
		zap.Int("columns", numCols),
		zap.Int("rows", len(result.Rows)),
	)
	return result, nil
}

// Close closes the pool.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// normalizeQuery drops surrounding whitespace and trailing statement
// terminators, which some drivers (Oracle) reject in a single statement.
func normalizeQuery(query string) string {
	q := strings.TrimSpace(query)
	for strings.HasSuffix(q, ";") {
		q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	}
	return q
}

// formatValue turns the raw bytes some drivers return for text and decimal
// columns (mysql text protocol, pq NUMERIC, mssql DECIMAL/MONEY) into
// strings. Bytes from binary columns stay []byte.
func formatValue(v any, binary bool) any {
	if b, ok := v.([]byte); ok && !binary {
		return string(b)
	}
	return v
}

// isBinaryType reports whether a driver column type name denotes raw bytes.
// An unknown (empty) type name is treated as binary.
func isBinaryType(name string) bool {
	name = strings.ToUpper(strings.TrimSpace(name))
	switch {
	case name == "":
		return true
	case strings.Contains(name, "BLOB"), strings.Contains(name, "BINARY"):
		return true
	}
	switch name {
	case "BYTEA", "RAW", "LONG RAW", "LONGRAW", "IMAGE", "BFILE":
		return true
	}
	return false
}
