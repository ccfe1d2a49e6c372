package etl_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ora2mongo/internal/etl"
)

// fakeSource answers queries from a fixed table keyed by query text.
type fakeSource struct {
	mu      sync.Mutex
	results map[string]*etl.QueryResult
	errs    map[string]error
	queries []string
	closed  bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		results: map[string]*etl.QueryResult{},
		errs:    map[string]error{},
	}
}

func (s *fakeSource) Query(_ context.Context, query string) (*etl.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if err, ok := s.errs[query]; ok {
		return nil, err
	}
	if res, ok := s.results[query]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("table or view does not exist")
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// fakeDestination keeps inserted records per collection in memory.
type fakeDestination struct {
	mu          sync.Mutex
	collections map[string][]etl.Record
	failOn      map[string]error
	closed      bool
}

func newFakeDestination() *fakeDestination {
	return &fakeDestination{
		collections: map[string][]etl.Record{},
		failOn:      map[string]error{},
	}
}

func (d *fakeDestination) InsertMany(_ context.Context, collection string, records []etl.Record) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.failOn[collection]; ok {
		return 0, err
	}
	d.collections[collection] = append(d.collections[collection], records...)
	return len(records), nil
}

func (d *fakeDestination) Close(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// failingReader is a large-object handle that cannot be read.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("ORA-22922: nonexistent LOB value") }

// writeDefinitions creates dir/<name> files with the given content.
func writeDefinitions(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func rows(n, cols int) []etl.Row {
	out := make([]etl.Row, n)
	for i := range out {
		row := make(etl.Row, cols)
		for j := range row {
			row[j] = int64(i*cols + j)
		}
		out[i] = row
	}
	return out
}
