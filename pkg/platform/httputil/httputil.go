package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "regdesk/pkg/domain-errors"
)

// InternalErrorMessage is shown to callers instead of the message of an
// internal-class error.
const InternalErrorMessage = "伺服器內部錯誤"

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteData writes a 200 envelope carrying data.
func WriteData(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteMessage writes a 200 envelope carrying a user-facing message.
func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message})
}

// WriteError centralizes domain error translation to HTTP responses.
// Internal-class errors are reported with a generic message; callers log the detail.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) || dErrors.IsInternal(err) {
		WriteJSON(w, http.StatusInternalServerError, Envelope{
			Error: InternalErrorMessage,
			Code:  string(dErrors.CodeInternal),
		})
		return
	}

	message := domainErr.Message
	if message == "" {
		message = string(domainErr.Code)
	}
	WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), Envelope{
		Error: message,
		Code:  string(domainErr.Code),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeVerification:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
