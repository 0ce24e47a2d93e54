package service

import (
	"context"
	"log/slog"
	"time"

	"regdesk/internal/registration/metrics"
	"regdesk/internal/registration/models"
	"regdesk/internal/registration/ports"
	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/audit"
	"regdesk/pkg/platform/device"
	"regdesk/pkg/platform/middleware/requesttime"
	"regdesk/pkg/platform/tracer"
	"regdesk/pkg/requestcontext"
)

type action string

const (
	actionCancel  action = "cancel"
	actionConfirm action = "confirm"
)

type Option func(*Service)

// Service looks registrations up in the sheet and transitions their status.
// Every call reads the sheet afresh; nothing is cached between requests.
type Service struct {
	table    ports.SpreadsheetTable
	schema   models.Schema
	notifier ports.CancellationNotifier
	tracer   tracer.Tracer
	metrics  *metrics.Metrics
	auditor  *audit.Logger
	logger   *slog.Logger
	location *time.Location
}

func New(table ports.SpreadsheetTable, schema models.Schema, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		table:    table,
		schema:   schema,
		tracer:   tracer.NewNoop(),
		logger:   logger,
		location: TaipeiLocation(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// WithNotifier sets where cancellations are handed after a successful write.
func WithNotifier(n ports.CancellationNotifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditor(a *audit.Logger) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithLocation overrides the zone status_changed_at is rendered in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// TaipeiLocation returns Asia/Taipei, or a fixed UTC+8 zone when the tz
// database is not available.
func TaipeiLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Taipei"); err == nil {
		return loc
	}
	return time.FixedZone("UTC+8", 8*60*60)
}

// Lookup returns every row matching identity. No match is an empty, non-nil slice.
func (s *Service) Lookup(ctx context.Context, identity models.Identity) (regs []models.Registration, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLookup,
		tracer.String(tracer.AttrNationalID, tracer.HashNationalID(identity.IDNumber.String())),
	)
	defer func() { span.End(err) }()

	regs, _, err = s.find(ctx, identity)
	if err != nil {
		s.metrics.ObserveLookup("error", 0)
		return nil, err
	}

	outcome := "found"
	if len(regs) == 0 {
		outcome = "empty"
	}
	s.metrics.ObserveLookup(outcome, len(regs))
	span.SetAttributes(tracer.Int(tracer.AttrMatches, len(regs)))
	s.auditor.Log(ctx, audit.EventRegistrationLookedUp,
		"subject", identity.IDNumber.Redacted(),
		"outcome", outcome,
		"matches", len(regs),
	)
	return regs, nil
}

// Cancel marks the registration for cmd.CourseName cancelled. A notification
// is queued afterwards when the row names a handler; its outcome never
// changes the result.
func (s *Service) Cancel(ctx context.Context, cmd models.MutationCommand) error {
	return s.mutate(ctx, actionCancel, cmd)
}

// Confirm marks the registration for cmd.CourseName confirmed.
func (s *Service) Confirm(ctx context.Context, cmd models.MutationCommand) error {
	return s.mutate(ctx, actionConfirm, cmd)
}

func (s *Service) mutate(ctx context.Context, act action, cmd models.MutationCommand) (err error) {
	spanName := tracer.SpanConfirm
	if act == actionCancel {
		spanName = tracer.SpanCancel
	}
	ctx, span := s.tracer.Start(ctx, spanName,
		tracer.String(tracer.AttrNationalID, tracer.HashNationalID(cmd.IDNumber.String())),
		tracer.String(tracer.AttrCourse, cmd.CourseName),
	)
	defer func() { span.End(err) }()

	regs, cols, err := s.find(ctx, cmd.Identity)
	if err != nil {
		s.metrics.ObserveMutation(string(act), "error")
		return err
	}
	if cols != nil {
		if err := s.schema.CheckAlignment(cols); err != nil {
			s.metrics.ObserveMutation(string(act), "error")
			s.logger.ErrorContext(ctx, "refusing status write outside the status column",
				"action", act,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			return err
		}
	}

	target, ok := findCourse(regs, cmd.CourseName)
	if !ok {
		return s.reject(ctx, act, cmd, dErrors.New(dErrors.CodeNotFound, models.MsgNotFound))
	}
	if err := checkTransition(act, target.Status); err != nil {
		return s.reject(ctx, act, cmd, err)
	}
	span.SetAttributes(tracer.Int(tracer.AttrRow, target.RowPosition))

	next := models.StatusConfirmed
	if act == actionCancel {
		next = models.StatusCancelled
	}
	changedAt := requesttime.Now(ctx).In(s.location).Format(models.TimestampLayout)
	actorIP := orUnknown(cmd.ActorIP)
	actorUA := orUnknown(cmd.ActorUserAgent)

	values := []string{s.schema.Labels.Label(next), changedAt, actorIP, actorUA}
	start := time.Now()
	err = s.table.WriteCells(ctx, target.RowPosition, s.schema.StatusColumn, values)
	s.metrics.ObserveSheet("write", start)
	if err != nil {
		s.metrics.ObserveMutation(string(act), "error")
		s.logger.ErrorContext(ctx, "failed to write registration status",
			"action", act,
			"row", target.RowPosition,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return err
	}

	s.metrics.ObserveMutation(string(act), "success")
	event := audit.EventRegistrationConfirmed
	if act == actionCancel {
		event = audit.EventRegistrationCancelled
	}
	s.auditor.Log(ctx, event,
		"subject", cmd.IDNumber.Redacted(),
		"course", cmd.CourseName,
		"outcome", "success",
		"row", target.RowPosition,
		"device", device.Parse(actorUA).String(),
	)

	if act == actionCancel {
		s.queueNotification(ctx, target, changedAt)
	}
	return nil
}

func (s *Service) queueNotification(ctx context.Context, reg models.Registration, cancelledAt string) {
	if s.notifier == nil || reg.HandlerContactID == "" {
		return
	}
	s.metrics.IncrementNotificationsQueued()
	s.notifier.NotifyCancellation(ctx, models.CancellationNotice{
		Recipient:   reg.HandlerContactID,
		CourseName:  reg.CourseName,
		Name:        reg.Name,
		IDNumber:    reg.IDNumber.String(),
		CourseDate:  reg.CourseDate,
		CancelledAt: cancelledAt,
	})
}

func (s *Service) reject(ctx context.Context, act action, cmd models.MutationCommand, err error) error {
	outcome := "not_found"
	if dErrors.HasCode(err, dErrors.CodeConflict) {
		outcome = "conflict"
	}
	s.metrics.ObserveMutation(string(act), outcome)
	s.auditor.Log(ctx, audit.EventMutationRejected,
		"subject", cmd.IDNumber.Redacted(),
		"course", cmd.CourseName,
		"outcome", outcome,
		"action", string(act),
	)
	return err
}

// CheckSchema reads the header row and verifies the configured mapping against it.
func (s *Service) CheckSchema(ctx context.Context) error {
	rows, err := s.read(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return dErrors.New(dErrors.CodeConfiguration, "registrations sheet has no header row")
	}
	return s.schema.CheckHeader(rows[0])
}

// find returns the rows matching identity and the header they were resolved
// against. cols is nil when the sheet is empty.
func (s *Service) find(ctx context.Context, identity models.Identity) ([]models.Registration, *models.Columns, error) {
	rows, err := s.read(ctx)
	if err != nil {
		return nil, nil, err
	}
	regs := make([]models.Registration, 0)
	if len(rows) == 0 {
		return regs, nil, nil
	}

	cols, err := s.schema.Resolve(rows[0])
	if err != nil {
		s.logger.ErrorContext(ctx, "registrations sheet does not match schema", "error", err)
		return nil, nil, err
	}
	for i, row := range rows[1:] {
		if !identity.Matches(cols.Value(row, models.FieldIDNumber), cols.Value(row, models.FieldBirthday)) {
			continue
		}
		regs = append(regs, s.toRegistration(i+2, row, cols))
	}
	return regs, cols, nil
}

func (s *Service) read(ctx context.Context) ([][]string, error) {
	start := time.Now()
	rows, err := s.table.ReadRows(ctx)
	s.metrics.ObserveSheet("read", start)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read registrations sheet",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}
	if len(rows) > 0 {
		s.metrics.SetSheetRows(len(rows) - 1)
	}
	return rows, nil
}

func (s *Service) toRegistration(position int, row []string, cols *models.Columns) models.Registration {
	// A sheet without a status header reads every row as registered.
	label := cols.Value(row, models.FieldStatus)
	return models.Registration{
		RowPosition:      position,
		IDNumber:         domain.NationalID(cols.Value(row, models.FieldIDNumber)),
		Birthday:         domain.Birthday(cols.Value(row, models.FieldBirthday)),
		Name:             cols.Value(row, models.FieldName),
		CourseName:       cols.Value(row, models.FieldCourseName),
		CourseDate:       cols.Value(row, models.FieldCourseDate),
		Status:           s.schema.Labels.Parse(label),
		StatusLabel:      label,
		StatusChangedAt:  cols.Audit(row, 1),
		ActorIP:          cols.Audit(row, 2),
		ActorUserAgent:   cols.Audit(row, 3),
		HandlerContactID: cols.Value(row, models.FieldHandlerContact),
	}
}

// findCourse returns the first registration for course, compared exactly.
func findCourse(regs []models.Registration, course string) (models.Registration, bool) {
	for _, r := range regs {
		if r.CourseName == course {
			return r, true
		}
	}
	return models.Registration{}, false
}

// checkTransition enforces registered -> confirmed -> cancelled, with
// cancelled terminal.
func checkTransition(act action, current models.Status) error {
	switch act {
	case actionCancel:
		if current == models.StatusCancelled {
			return dErrors.New(dErrors.CodeConflict, models.MsgAlreadyCancelled)
		}
	case actionConfirm:
		switch current {
		case models.StatusConfirmed:
			return dErrors.New(dErrors.CodeConflict, models.MsgAlreadyConfirmed)
		case models.StatusCancelled:
			return dErrors.New(dErrors.CodeConflict, models.MsgConfirmAfterCancel)
		}
	}
	return nil
}

func orUnknown(v string) string {
	if v == "" {
		return requestcontext.Unknown
	}
	return v
}
