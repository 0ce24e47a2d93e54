// Package verification checks reCAPTCHA v3 tokens before registration lookups.
package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/tracer"
	"regdesk/pkg/validation"
)

// DefaultEndpoint is Google's siteverify URL.
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// Messages returned to the caller with a verification_failed code.
const (
	MsgTokenMissing = "缺少 reCAPTCHA token"
	MsgFailed       = "人機驗證失敗，請重新整理頁面再試"
	MsgLowScore     = "系統偵測到異常行為，請稍後再試"
	MsgUnavailable  = "驗證服務暫時無法使用"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Config configures a Recaptcha verifier.
type Config struct {
	Secret   string
	MinScore float64
	Endpoint string
	// Bypass passes every check. It is implied when Secret is empty.
	Bypass  bool
	Timeout time.Duration
}

// Recaptcha verifies tokens against the siteverify API.
type Recaptcha struct {
	cfg     Config
	client  HTTPDoer
	logger  *slog.Logger
	tracer  tracer.Tracer
	results *prometheus.CounterVec
}

type Option func(*Recaptcha)

func WithHTTPClient(c HTTPDoer) Option {
	return func(r *Recaptcha) {
		if c != nil {
			r.client = c
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(r *Recaptcha) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithRegisterer records verification results on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Recaptcha) {
		r.results = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_verification_results_total",
			Help: "Human verification checks, labeled by result",
		}, []string{"result"})
	}
}

// New creates a verifier. When the check is bypassed a warning is logged once here.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Recaptcha {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	r := &Recaptcha{
		cfg:    cfg,
		logger: logger,
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: cfg.Timeout}
	}
	if r.Bypassed() {
		r.logger.Warn("human verification is bypassed",
			"secret_configured", cfg.Secret != "",
			"bypass_flag", cfg.Bypass,
		)
	}
	return r
}

// Bypassed reports whether every token is accepted without a remote call.
func (r *Recaptcha) Bypassed() bool {
	return r.cfg.Bypass || r.cfg.Secret == ""
}

// Verify checks token. remoteIP is forwarded when known. All failures are
// verification_failed errors carrying a user-facing message.
func (r *Recaptcha) Verify(ctx context.Context, token, remoteIP string) (err error) {
	ctx, span := r.tracer.Start(ctx, tracer.SpanVerify)
	result := "error"
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrOutcome, result))
		span.End(err)
		if r.results != nil {
			r.results.WithLabelValues(result).Inc()
		}
	}()

	if r.Bypassed() {
		result = "bypassed"
		return nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		result = "missing_token"
		return dErrors.New(dErrors.CodeVerification, MsgTokenMissing)
	}
	if len(token) > validation.MaxTokenLength {
		result = "rejected"
		return dErrors.New(dErrors.CodeVerification, MsgFailed)
	}

	resp, err := r.siteverify(ctx, token, remoteIP)
	if err != nil {
		r.logger.ErrorContext(ctx, "siteverify call failed", "error", err)
		return dErrors.Wrap(err, dErrors.CodeVerification, MsgUnavailable)
	}
	if !resp.Success {
		result = "rejected"
		r.logger.WarnContext(ctx, "siteverify rejected token", "error_codes", resp.ErrorCodes)
		return dErrors.New(dErrors.CodeVerification, MsgFailed)
	}
	span.SetAttributes(tracer.Float64("recaptcha.score", resp.Score))
	if resp.Score < r.cfg.MinScore {
		result = "low_score"
		r.logger.WarnContext(ctx, "siteverify score below threshold",
			"score", resp.Score,
			"min_score", r.cfg.MinScore,
		)
		return dErrors.New(dErrors.CodeVerification, MsgLowScore)
	}
	result = "passed"
	return nil
}

func (r *Recaptcha) siteverify(ctx context.Context, token, remoteIP string) (*siteverifyResponse, error) {
	form := url.Values{}
	form.Set("secret", r.cfg.Secret)
	form.Set("response", token)
	if remoteIP != "" && remoteIP != "unknown" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("siteverify status %d", resp.StatusCode)
	}
	var out siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode siteverify response: %w", err)
	}
	return &out, nil
}
