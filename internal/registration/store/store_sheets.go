package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"regdesk/internal/registration/models"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/tracer"
)

// Error Contract:
// - configuration_error when no credential is configured or the client cannot be built
// - internal_error wrapping the API error for any failed read or write
// Callers never see partial results.

// valueInputUserEntered makes the API parse values as if typed into the UI.
const valueInputUserEntered = "USER_ENTERED"

// NewSheetsService builds the process-wide Sheets client. Inline credentials
// take precedence over a credentials file. extra is appended last so tests can
// point the client at a local endpoint.
func NewSheetsService(ctx context.Context, credentialsJSON, credentialsPath string, extra ...option.ClientOption) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case strings.TrimSpace(credentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	case strings.TrimSpace(credentialsPath) != "":
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	case len(extra) == 0:
		return nil, dErrors.New(dErrors.CodeConfiguration, "google credentials are not configured")
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "failed to create sheets client")
	}
	return svc, nil
}

// GoogleSheetsTable reads and writes one sheet of a spreadsheet.
type GoogleSheetsTable struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	sheetName     string
	readColumns   string
	tracer        tracer.Tracer
	logger        *slog.Logger
}

// Option configures a GoogleSheetsTable.
type Option func(*GoogleSheetsTable)

// WithTracer records a span per API call.
func WithTracer(t tracer.Tracer) Option {
	return func(s *GoogleSheetsTable) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLogger sets the logger for failed API calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *GoogleSheetsTable) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewGoogleSheetsTable wraps svc for the sheet sheetName. readColumns is the
// A1 column span read on every lookup, e.g. "A:Z".
func NewGoogleSheetsTable(svc *sheets.Service, spreadsheetID, sheetName, readColumns string, opts ...Option) *GoogleSheetsTable {
	t := &GoogleSheetsTable{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		readColumns:   readColumns,
		tracer:        tracer.NewNoop(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *GoogleSheetsTable) ReadRows(ctx context.Context) (rows [][]string, err error) {
	ctx, span := t.tracer.Start(ctx, tracer.SpanSheetRead)
	defer func() { span.End(err) }()

	rng := a1Range(t.sheetName, t.readColumns)
	resp, err := t.values.Get(t.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		t.logger.ErrorContext(ctx, "sheet read failed", "range", rng, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read registrations sheet")
	}

	rows = make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, v := range raw {
			row[j] = cellString(v)
		}
		rows[i] = row
	}
	span.SetAttributes(tracer.Int(tracer.AttrRowCount, len(rows)))
	return rows, nil
}

func (t *GoogleSheetsTable) WriteCells(ctx context.Context, row int, startColumn string, values []string) (err error) {
	ctx, span := t.tracer.Start(ctx, tracer.SpanSheetWrite, tracer.Int(tracer.AttrRow, row))
	defer func() { span.End(err) }()

	rng, err := writeRange(t.sheetName, row, startColumn, len(values))
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	body := &sheets.ValueRange{Values: [][]any{cells}}
	_, err = t.values.Update(t.spreadsheetID, rng, body).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	if err != nil {
		t.logger.ErrorContext(ctx, "sheet write failed", "range", rng, "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registration")
	}
	return nil
}

// a1Range quotes the sheet name so names with spaces or punctuation work.
func a1Range(sheetName, cells string) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'!" + cells
}

// writeRange returns e.g. 'registrations'!E7:H7 for width 4 starting at E.
func writeRange(sheetName string, row int, startColumn string, width int) (string, error) {
	if row < 2 {
		return "", dErrors.New(dErrors.CodeInternal, fmt.Sprintf("refusing to write row %d", row))
	}
	start, err := models.ColumnIndex(startColumn)
	if err != nil {
		return "", err
	}
	end := models.ColumnLetter(start + width - 1)
	return a1Range(sheetName, fmt.Sprintf("%s%d:%s%d", models.ColumnLetter(start), row, end, row)), nil
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
