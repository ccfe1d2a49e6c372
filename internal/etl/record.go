package etl

// ── Record ─────────────────────────────────────────────────
// Common intermediate data format.
// Sources return rows, destinations consume Records.

// Row is an ordered sequence of scalar values, aligned with the column names
// of the query execution that produced it.
type Row []any

// QueryResult is the outcome of a single query execution: the column names
// and every row, taken from the same cursor.
type QueryResult struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the execution produced no rows.
func (r *QueryResult) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// Record is a single document flowing into the destination.
type Record struct {
	Data map[string]any `json:"data"`
}

// NewRecord zips column names with the values of row. Extra values without a
// column name are ignored; missing values are left out.
func NewRecord(columns []string, row Row) Record {
	data := make(map[string]any, len(columns))
	for i, col := range columns {
		if i < len(row) {
			data[col] = row[i]
		}
	}
	return Record{Data: data}
}

// Definition is a parameterless query read from the definitions directory.
// Name is the file stem and doubles as the destination collection name.
type Definition struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Query string `json:"-"`
}
