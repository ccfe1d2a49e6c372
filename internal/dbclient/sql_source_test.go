package dbclient_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"ora2mongo/internal/dbclient"
	"ora2mongo/internal/domain"
)

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	stmts := []string{
		`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL, photo BLOB)`,
		`CREATE TABLE empty_table (id INTEGER)`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}
	for i := 1; i <= 10; i++ {
		_, err := db.Exec(`INSERT INTO customers (id, name, photo) VALUES (?, ?, ?)`,
			i, fmt.Sprintf("customer-%02d", i), []byte{byte(i), 0xff})
		require.NoError(t, err)
	}
}

func memorySource(t *testing.T) *dbclient.SQLSource {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	seed(t, db)
	src := dbclient.NewSQLSource("sqlite", db, nil)
	t.Cleanup(func() { src.Close() })
	return src
}

func TestSQLSource_Query(t *testing.T) {
	src := memorySource(t)

	res, err := src.Query(context.Background(), "SELECT id, name, photo FROM customers ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "photo"}, res.Columns)
	require.Len(t, res.Rows, 10)

	for _, row := range res.Rows {
		assert.Len(t, row, len(res.Columns))
	}
	first := res.Rows[0]
	assert.Equal(t, int64(1), first[0])
	assert.Equal(t, "customer-01", first[1])
	assert.Equal(t, []byte{1, 0xff}, first[2])
}

func TestSQLSource_Query_TrailingTerminator(t *testing.T) {
	src := memorySource(t)

	res, err := src.Query(context.Background(), "  SELECT count(*) AS n FROM customers;\n")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(10), res.Rows[0][0])
}

func TestSQLSource_Query_Empty(t *testing.T) {
	src := memorySource(t)

	res, err := src.Query(context.Background(), "SELECT id FROM empty_table")
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, []string{"id"}, res.Columns)
}

func TestSQLSource_Query_Error(t *testing.T) {
	src := memorySource(t)

	_, err := src.Query(context.Background(), "SELECT * FROM missing_table")
	require.Error(t, err)

	// The connection is still usable after a failed execution.
	res, err := src.Query(context.Background(), "SELECT id FROM customers")
	require.NoError(t, err)
	assert.Len(t, res.Rows, 10)
}

func TestOpenSource_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	seed(t, db)
	require.NoError(t, db.Close())

	src, err := dbclient.OpenSource(context.Background(), domain.DatabaseConnection{
		Driver: domain.DatabaseDriverSQLite,
		Host:   path,
	}, nil)
	require.NoError(t, err)
	defer src.Close()

	res, err := src.Query(context.Background(), "SELECT name FROM customers WHERE id = 3")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "customer-03", res.Rows[0][0])
}

func TestOpenSource_Unreachable(t *testing.T) {
	_, err := dbclient.OpenSource(context.Background(), domain.DatabaseConnection{
		Driver: domain.DatabaseDriverSQLite,
		Host:   filepath.Join(t.TempDir(), "missing", "nope.db"),
	}, nil)
	require.Error(t, err)
}

func TestOpenSource_UnsupportedDriver(t *testing.T) {
	_, err := dbclient.OpenSource(context.Background(), domain.DatabaseConnection{
		Driver: domain.DatabaseDriver("db2"),
		Host:   "localhost",
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source driver")
}

func TestSQLSource_Query_TextBytesBecomeStrings(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	src := dbclient.NewSQLSource("sqlite", db, nil)

	_, err = db.Exec(`CREATE TABLE documents (title TEXT, amount DECIMAL(10,2), payload BLOB)`)
	require.NoError(t, err)
	// Bytes bound to TEXT/DECIMAL columns are stored as blobs, the way text
	// protocol drivers hand them back.
	_, err = db.Exec(`INSERT INTO documents VALUES (?, ?, ?)`,
		[]byte("invoice"), []byte("12.50"), []byte{0x00, 0x01, 0xfe})
	require.NoError(t, err)

	res, err := src.Query(context.Background(), "SELECT title, amount, payload FROM documents")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, "invoice", row[0])
	assert.Equal(t, "12.50", row[1])
	assert.Equal(t, []byte{0x00, 0x01, 0xfe}, row[2])
}
