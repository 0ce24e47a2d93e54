package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"regdesk/internal/registration/models"
	dErrors "regdesk/pkg/domain-errors"
)

// InMemoryTable is a sheet held in memory for development and tests. It
// follows the same row semantics as the Sheets API: row 1 is the header and
// writes past the end of a row extend it.
type InMemoryTable struct {
	mu   sync.RWMutex
	rows [][]string
}

// NewInMemoryTable creates a table with the given header and data rows.
func NewInMemoryTable(header []string, rows ...[]string) *InMemoryTable {
	t := &InMemoryTable{rows: make([][]string, 0, len(rows)+1)}
	t.rows = append(t.rows, cloneRow(header))
	for _, r := range rows {
		t.rows = append(t.rows, cloneRow(r))
	}
	return t
}

// LoadCSV reads a header line and data rows from r. Rows may have differing lengths.
func LoadCSV(r io.Reader) (*InMemoryTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "failed to parse sheet seed")
	}
	if len(records) == 0 {
		return nil, dErrors.New(dErrors.CodeConfiguration, "sheet seed has no header row")
	}
	return NewInMemoryTable(records[0], records[1:]...), nil
}

// LoadCSVFile is LoadCSV for a file path.
func LoadCSVFile(path string) (*InMemoryTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, fmt.Sprintf("failed to open sheet seed %s", path))
	}
	defer f.Close()
	return LoadCSV(f)
}

func (t *InMemoryTable) ReadRows(_ context.Context) ([][]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = cloneRow(r)
	}
	return out, nil
}

func (t *InMemoryTable) WriteCells(_ context.Context, row int, startColumn string, values []string) error {
	start, err := models.ColumnIndex(startColumn)
	if err != nil {
		return err
	}
	if row < 2 {
		return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("refusing to write row %d", row))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for len(t.rows) < row {
		t.rows = append(t.rows, nil)
	}
	r := t.rows[row-1]
	if need := start + len(values); len(r) < need {
		r = append(r, make([]string, need-len(r))...)
	}
	copy(r[start:], values)
	t.rows[row-1] = r
	return nil
}

// Row returns a copy of the 1-based row, or nil when out of range.
func (t *InMemoryTable) Row(row int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row < 1 || row > len(t.rows) {
		return nil
	}
	return cloneRow(t.rows[row-1])
}

func cloneRow(r []string) []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r))
	copy(out, r)
	return out
}
