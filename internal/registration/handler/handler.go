package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regdesk/internal/registration/models"
	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/httputil"
	"regdesk/pkg/requestcontext"
)

// Service defines the registration operations used by the HTTP layer.
type Service interface {
	Lookup(ctx context.Context, identity models.Identity) ([]models.Registration, error)
	Cancel(ctx context.Context, cmd models.MutationCommand) error
	Confirm(ctx context.Context, cmd models.MutationCommand) error
}

// Verifier is the human-verification check run before any lookup.
// Failures are verification_failed domain errors.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Handler serves the registration API.
type Handler struct {
	service         Service
	verifier        Verifier
	logger          *slog.Logger
	requireBirthday bool
	maskNames       bool
}

type Option func(*Handler)

// WithRequireBirthday makes the birthday part of every identity.
func WithRequireBirthday(required bool) Option {
	return func(h *Handler) {
		h.requireBirthday = required
	}
}

// WithMaskNames returns masked names and omits name_full.
func WithMaskNames(mask bool) Option {
	return func(h *Handler) {
		h.maskNames = mask
	}
}

// New creates a registration Handler.
func New(service Service, verifier Verifier, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service:  service,
		verifier: verifier,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the registration routes. Mount under /api.
func (h *Handler) Register(r chi.Router) {
	r.Post("/query", h.HandleQuery)
	r.Post("/cancel", h.HandleCancel)
	r.Post("/confirm", h.HandleConfirm)
}

// HandleQuery verifies the caller, then lists the registrations for an id.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[QueryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.verifier.Verify(ctx, req.RecaptchaToken, requestcontext.ClientIP(ctx)); err != nil {
		h.logger.WarnContext(ctx, "human verification failed",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	req.requireBirthday = h.requireBirthday
	if !httputil.Prepare(w, req, h.logger, ctx, requestID) {
		return
	}

	regs, err := h.service.Lookup(ctx, req.identity)
	if err != nil {
		h.logger.ErrorContext(ctx, "registration lookup failed",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, h.toResponses(regs))
}

// HandleCancel cancels one registration after the confirmation phrase check.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[CancelRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	req.requireBirthday = h.requireBirthday
	if !httputil.Prepare(w, req, h.logger, ctx, requestID) {
		return
	}

	if err := h.service.Cancel(ctx, h.command(ctx, req.identity, req.CourseName)); err != nil {
		h.logMutationError(ctx, "cancel", err, requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, models.MsgCancelSucceeded)
}

// HandleConfirm confirms attendance for one registration.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[ConfirmRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	req.requireBirthday = h.requireBirthday
	if !httputil.Prepare(w, req, h.logger, ctx, requestID) {
		return
	}

	if err := h.service.Confirm(ctx, h.command(ctx, req.identity, req.CourseName)); err != nil {
		h.logMutationError(ctx, "confirm", err, requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, models.MsgConfirmSucceeded)
}

func (h *Handler) command(ctx context.Context, identity models.Identity, course string) models.MutationCommand {
	return models.MutationCommand{
		Identity:       identity,
		CourseName:     course,
		ActorIP:        requestcontext.ClientIPOrUnknown(ctx),
		ActorUserAgent: requestcontext.UserAgentOrUnknown(ctx),
	}
}

func (h *Handler) logMutationError(ctx context.Context, action string, err error, requestID string) {
	log := h.logger.InfoContext
	if dErrors.IsInternal(err) {
		log = h.logger.ErrorContext
	}
	log(ctx, "registration "+action+" rejected",
		"error", err,
		"request_id", requestID,
	)
}

func (h *Handler) toResponses(regs []models.Registration) []RegistrationResponse {
	out := make([]RegistrationResponse, 0, len(regs))
	for _, reg := range regs {
		resp := RegistrationResponse{
			RowIndex:        reg.RowPosition,
			Name:            reg.Name,
			CourseName:      reg.CourseName,
			CourseDate:      reg.CourseDate,
			Status:          reg.Status.String(),
			StatusLabel:     reg.StatusLabel,
			StatusChangedAt: reg.StatusChangedAt,
		}
		if h.maskNames {
			resp.Name = domain.MaskName(reg.Name)
		} else {
			resp.NameFull = reg.Name
		}
		out = append(out, resp)
	}
	return out
}
