package models

import (
	"fmt"
	"strings"

	dErrors "regdesk/pkg/domain-errors"
)

// Field is a logical registration column.
type Field string

const (
	FieldIDNumber       Field = "id_number"
	FieldName           Field = "name"
	FieldCourseName     Field = "course_name"
	FieldCourseDate     Field = "course_date"
	FieldStatus         Field = "status"
	FieldBirthday       Field = "birthday"
	FieldHandlerContact Field = "handler_contact_id"
)

// AuditWidth is the number of contiguous cells written per transition:
// status, changed-at, actor ip, actor user agent.
const AuditWidth = 4

// Schema maps logical fields to header texts and names the column where the
// four audit cells start.
type Schema struct {
	Headers         map[Field]string
	StatusColumn    string
	Labels          StatusLabels
	RequireBirthday bool
}

// RequiredFields are the columns a sheet must have for lookups to work.
func (s Schema) RequiredFields() []Field {
	if s.RequireBirthday {
		return []Field{FieldIDNumber, FieldBirthday}
	}
	return []Field{FieldIDNumber}
}

// Validate checks the mapping itself, without a sheet.
func (s Schema) Validate() error {
	for _, f := range s.RequiredFields() {
		if strings.TrimSpace(s.Headers[f]) == "" {
			return dErrors.New(dErrors.CodeConfiguration, fmt.Sprintf("schema: no header mapped for %s", f))
		}
	}
	if _, err := ColumnIndex(s.StatusColumn); err != nil {
		return err
	}
	if s.Labels.Confirmed == "" || s.Labels.Cancelled == "" {
		return dErrors.New(dErrors.CodeConfiguration, "schema: status labels must not be empty")
	}
	return nil
}

// Columns is a schema resolved against a live header row.
type Columns struct {
	index       map[Field]int
	statusWrite int
}

// Resolve locates every mapped field in header by exact match against the
// trimmed header text. Missing required fields are configuration errors;
// missing optional fields read as empty.
func (s Schema) Resolve(header []string) (*Columns, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.TrimSpace(h)
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	cols := &Columns{index: make(map[Field]int, len(s.Headers))}
	for field, text := range s.Headers {
		if text == "" {
			continue
		}
		if i, ok := positions[text]; ok {
			cols.index[field] = i
		}
	}
	for _, f := range s.RequiredFields() {
		if _, ok := cols.index[f]; !ok {
			return nil, dErrors.New(dErrors.CodeConfiguration, MissingColumnMessage(s.Headers[f]))
		}
	}

	write, err := ColumnIndex(s.StatusColumn)
	if err != nil {
		return nil, err
	}
	cols.statusWrite = write
	return cols, nil
}

// Has reports whether f was found in the header.
func (c *Columns) Has(f Field) bool {
	_, ok := c.index[f]
	return ok
}

// Index returns the 0-based column of f.
func (c *Columns) Index(f Field) (int, bool) {
	i, ok := c.index[f]
	return i, ok
}

// Value returns the trimmed cell for f, or "" when the column or cell is absent.
func (c *Columns) Value(row []string, f Field) string {
	i, ok := c.index[f]
	if !ok {
		return ""
	}
	return cell(row, i)
}

// Audit returns the trimmed cell at offset from the status write column.
func (c *Columns) Audit(row []string, offset int) string {
	return cell(row, c.statusWrite+offset)
}

// StatusWriteIndex is the 0-based column where audit writes start.
func (c *Columns) StatusWriteIndex() int { return c.statusWrite }

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// CheckHeader verifies that the status column mapped by header text is the
// column audit writes start at. It is used by readiness and the schema CLI.
func (s Schema) CheckHeader(header []string) error {
	cols, err := s.Resolve(header)
	if err != nil {
		return err
	}
	return s.CheckAlignment(cols)
}

// CheckAlignment fails when the status header was found in a column other
// than the one audit writes start at. A write there would never be read back.
func (s Schema) CheckAlignment(cols *Columns) error {
	if i, ok := cols.index[FieldStatus]; ok && i != cols.statusWrite {
		return dErrors.New(dErrors.CodeConfiguration, fmt.Sprintf(
			"schema: status header %q is in column %s, writes target column %s",
			s.Headers[FieldStatus], ColumnLetter(i), s.StatusColumn))
	}
	return nil
}

// ColumnIndex converts a column letter (A, Z, AA) to a 0-based index.
func ColumnIndex(letter string) (int, error) {
	l := strings.ToUpper(strings.TrimSpace(letter))
	if l == "" || len(l) > 3 {
		return 0, dErrors.New(dErrors.CodeConfiguration, fmt.Sprintf("schema: invalid column %q", letter))
	}
	n := 0
	for _, r := range l {
		if r < 'A' || r > 'Z' {
			return 0, dErrors.New(dErrors.CodeConfiguration, fmt.Sprintf("schema: invalid column %q", letter))
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, nil
}

// ColumnLetter converts a 0-based index to its column letter.
func ColumnLetter(index int) string {
	if index < 0 {
		return ""
	}
	var b []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}
