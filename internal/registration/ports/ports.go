package ports

import (
	"context"

	"regdesk/internal/registration/models"
)

// SpreadsheetTable is the backing store: one named sheet read in full and
// written one row range at a time. Implementations hold the authenticated
// client built at startup and never cache row data.
type SpreadsheetTable interface {
	// ReadRows returns the header row followed by every data row. Trailing
	// empty cells may be omitted, so rows can be shorter than the header.
	ReadRows(ctx context.Context) ([][]string, error)

	// WriteCells writes values into consecutive columns of row (1-based),
	// starting at startColumn, with "as typed" input semantics.
	WriteCells(ctx context.Context, row int, startColumn string, values []string) error
}

// CancellationNotifier receives cancellations after the sheet write has
// succeeded. It must not block the caller on delivery, and its outcome never
// affects the cancel result.
type CancellationNotifier interface {
	NotifyCancellation(ctx context.Context, notice models.CancellationNotice)
}
