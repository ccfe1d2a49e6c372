package etl

import (
	"fmt"
	"time"
)

// DefinitionStatus is the outcome of processing one query definition.
type DefinitionStatus string

const (
	StatusLoaded        DefinitionStatus = "loaded"
	StatusReadFailed    DefinitionStatus = "read_failed"
	StatusNoData        DefinitionStatus = "no_data" // query failed or returned zero rows
	StatusConvertFailed DefinitionStatus = "convert_failed"
	StatusInsertFailed  DefinitionStatus = "insert_failed"
)

// DefinitionResult holds the per-definition counters of a pass.
type DefinitionResult struct {
	Name     string           `json:"name"`
	Status   DefinitionStatus `json:"status"`
	RowsRead int              `json:"rowsRead"`
	Records  int              `json:"records"`
	Inserted int              `json:"inserted"`
	Elapsed  time.Duration    `json:"elapsed"`
	Error    string           `json:"error,omitempty"`
}

// RunSummary aggregates a full pass. It only lives for the duration of the
// run; the log stream is the durable record.
type RunSummary struct {
	RunID       string             `json:"runId"`
	Definitions []DefinitionResult `json:"definitions"`
	Elapsed     time.Duration      `json:"elapsed"`
}

// Processed returns how many definitions were attempted.
func (s *RunSummary) Processed() int {
	return len(s.Definitions)
}

// Inserted returns the number of records accepted by the destination.
func (s *RunSummary) Inserted() int {
	n := 0
	for _, d := range s.Definitions {
		n += d.Inserted
	}
	return n
}

// Result looks up the outcome for a definition name.
func (s *RunSummary) Result(name string) (DefinitionResult, bool) {
	for _, d := range s.Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return DefinitionResult{}, false
}

// FormatElapsed renders d as "Nd Nh Nmin Ns", truncating sub-second parts.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	days, secs := secs/86400, secs%86400
	hours, secs := secs/3600, secs%3600
	mins, secs := secs/60, secs%60
	return fmt.Sprintf("%dd %dh %dmin %ds", days, hours, mins, secs)
}
