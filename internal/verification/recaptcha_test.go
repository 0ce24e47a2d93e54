package verification

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	dErrors "regdesk/pkg/domain-errors"
)

// RecaptchaSuite tests the siteverify client against a local fake.
//
// Justification: verification gates every lookup; a fail-open bug exposes
// registrations to scraping, a fail-closed bug locks everyone out.
type RecaptchaSuite struct {
	suite.Suite
	server   *httptest.Server
	response string
	status   int
	form     url.Values
	calls    int
}

func TestRecaptchaSuite(t *testing.T) {
	suite.Run(t, new(RecaptchaSuite))
}

func (s *RecaptchaSuite) SetupTest() {
	s.status = http.StatusOK
	s.response = `{"success":true,"score":0.9,"action":"query"}`
	s.form = nil
	s.calls = 0
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls++
		s.Equal("application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		s.form, _ = url.ParseQuery(string(body))
		w.WriteHeader(s.status)
		_, _ = io.WriteString(w, s.response)
	}))
}

func (s *RecaptchaSuite) TearDownTest() {
	s.server.Close()
}

func (s *RecaptchaSuite) verifier(cfg Config, opts ...Option) *Recaptcha {
	if cfg.Endpoint == "" {
		cfg.Endpoint = s.server.URL
	}
	return New(cfg, slog.New(slog.DiscardHandler), opts...)
}

func (s *RecaptchaSuite) assertVerificationError(err error, msg string) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeVerification))
	var de *dErrors.Error
	s.Require().ErrorAs(err, &de)
	s.Equal(msg, de.Message)
}

func (s *RecaptchaSuite) TestPasses() {
	reg := prometheus.NewRegistry()
	v := s.verifier(Config{Secret: "secret", MinScore: 0.3}, WithRegisterer(reg))

	s.NoError(v.Verify(context.Background(), "token-1", "203.0.113.5"))
	s.Equal("secret", s.form.Get("secret"))
	s.Equal("token-1", s.form.Get("response"))
	s.Equal("203.0.113.5", s.form.Get("remoteip"))
	s.Equal(float64(1), testutil.ToFloat64(v.results.WithLabelValues("passed")))
}

func (s *RecaptchaSuite) TestUnknownRemoteIPNotSent() {
	v := s.verifier(Config{Secret: "secret"})
	s.NoError(v.Verify(context.Background(), "token-1", "unknown"))
	s.False(s.form.Has("remoteip"))
}

func (s *RecaptchaSuite) TestMissingToken() {
	v := s.verifier(Config{Secret: "secret"})
	s.assertVerificationError(v.Verify(context.Background(), "  ", ""), MsgTokenMissing)
	s.Equal(0, s.calls)
}

func (s *RecaptchaSuite) TestOversizedTokenRejectedLocally() {
	v := s.verifier(Config{Secret: "secret"})
	s.assertVerificationError(v.Verify(context.Background(), strings.Repeat("x", 5000), ""), MsgFailed)
	s.Equal(0, s.calls)
}

func (s *RecaptchaSuite) TestRejectedToken() {
	s.response = `{"success":false,"error-codes":["invalid-input-response"]}`
	v := s.verifier(Config{Secret: "secret"})
	s.assertVerificationError(v.Verify(context.Background(), "token-1", ""), MsgFailed)
}

func (s *RecaptchaSuite) TestLowScore() {
	s.response = `{"success":true,"score":0.2}`
	v := s.verifier(Config{Secret: "secret", MinScore: 0.3})
	s.assertVerificationError(v.Verify(context.Background(), "token-1", ""), MsgLowScore)

	s.response = `{"success":true,"score":0.3}`
	s.NoError(v.Verify(context.Background(), "token-1", ""))
}

func (s *RecaptchaSuite) TestServiceUnavailable() {
	s.Run("non-200", func() {
		s.status = http.StatusBadGateway
		v := s.verifier(Config{Secret: "secret"})
		s.assertVerificationError(v.Verify(context.Background(), "token-1", ""), MsgUnavailable)
	})

	s.Run("malformed body", func() {
		s.status = http.StatusOK
		s.response = `<html>`
		v := s.verifier(Config{Secret: "secret"})
		s.assertVerificationError(v.Verify(context.Background(), "token-1", ""), MsgUnavailable)
	})

	s.Run("unreachable", func() {
		v := s.verifier(Config{Secret: "secret", Endpoint: "http://127.0.0.1:1"})
		s.assertVerificationError(v.Verify(context.Background(), "token-1", ""), MsgUnavailable)
	})
}

func (s *RecaptchaSuite) TestBypass() {
	s.Run("explicit flag", func() {
		v := s.verifier(Config{Secret: "secret", Bypass: true})
		s.True(v.Bypassed())
		s.NoError(v.Verify(context.Background(), "", ""))
	})

	s.Run("missing secret", func() {
		v := s.verifier(Config{})
		s.True(v.Bypassed())
		s.NoError(v.Verify(context.Background(), "", ""))
	})

	s.Equal(0, s.calls)
}
