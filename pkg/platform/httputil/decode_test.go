package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "regdesk/pkg/domain-errors"
)

type testRequest struct {
	IDNumber string `json:"idNumber"`
	Count    int    `json:"count"`
}

type validatingRequest struct {
	IDNumber string `json:"idNumber"`
}

func (r *validatingRequest) Validate() error {
	if r.IDNumber == "" {
		return errors.New("idNumber is required")
	}
	return nil
}

// fullRequest implements all preparation interfaces and records the call order.
type fullRequest struct {
	IDNumber string `json:"idNumber"`
	calls    []string
}

func (r *fullRequest) Sanitize()  { r.calls = append(r.calls, "sanitize") }
func (r *fullRequest) Normalize() { r.calls = append(r.calls, "normalize") }
func (r *fullRequest) Validate() error {
	r.calls = append(r.calls, "validate")
	return nil
}

type domainErrorRequest struct {
	IDNumber string `json:"idNumber"`
}

func (r *domainErrorRequest) Validate() error {
	if r.IDNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "請提供身分證字號")
	}
	return nil
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeJSON(t *testing.T) {
	logger := discardLogger()
	ctx := context.Background()

	t.Run("successful decode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"idNumber":"A123456789","count":2}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[testRequest](w, req, logger, ctx, "test-request-id")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "A123456789", result.IDNumber)
		assert.Equal(t, 2, result.Count)
	})

	t.Run("invalid JSON returns bad request envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid json}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[testRequest](w, req, logger, ctx, "test-request-id")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeEnvelope(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "bad_request", body["code"])
		assert.Equal(t, InvalidBodyMessage, body["error"])
	})

	t.Run("empty body returns error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(""))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[testRequest](w, req, logger, ctx, "test-request-id")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := discardLogger()
	ctx := context.Background()

	t.Run("successful decode and validate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"idNumber":"A123456789"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[validatingRequest](w, req, logger, ctx, "test-request-id")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "A123456789", result.IDNumber)
	})

	t.Run("calls preparation methods in order", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"idNumber":"A123456789"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[fullRequest](w, req, logger, ctx, "test-request-id")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, []string{"sanitize", "normalize", "validate"}, result.calls)
	})

	t.Run("preserves domain error code from Validate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"idNumber":""}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[domainErrorRequest](w, req, logger, ctx, "test-request-id")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeEnvelope(t, w)
		assert.Equal(t, "validation_failed", body["code"])
		assert.Equal(t, "請提供身分證字號", body["error"])
	})

	t.Run("wraps plain error with validation code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"idNumber":""}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[validatingRequest](w, req, logger, ctx, "test-request-id")

		assert.False(t, ok)
		assert.Nil(t, result)
		body := decodeEnvelope(t, w)
		assert.Equal(t, "validation_failed", body["code"])
		assert.Equal(t, "idNumber is required", body["error"])
	})
}

func TestPrepareRequest(t *testing.T) {
	assert.NoError(t, PrepareRequest(&validatingRequest{IDNumber: "A123456789"}))
	assert.ErrorContains(t, PrepareRequest(&validatingRequest{}), "idNumber is required")
	assert.NoError(t, PrepareRequest(&testRequest{}))
}
