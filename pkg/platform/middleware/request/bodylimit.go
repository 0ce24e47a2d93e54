package request

import (
	"net/http"

	"regdesk/pkg/platform/httputil"
)

// BodyTooLargeMessage is returned when a declared body exceeds the limit.
const BodyTooLargeMessage = "請求內容過大"

// BodyLimit caps request bodies at maxBytes. A Content-Length above the cap
// is answered with 413 before the handler runs; chunked bodies are cut off
// by http.MaxBytesReader and fail when decoded.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.Envelope{
					Error: BodyTooLargeMessage,
					Code:  "bad_request",
				})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
