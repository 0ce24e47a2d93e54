package validation

// MaxBodySize bounds API request bodies; the largest legitimate body is a
// cancel request with a reCAPTCHA token.
const MaxBodySize = 16 * 1024

// Field length limits applied before any sheet access.
const (
	MaxCourseNameLength = 200
	MaxTokenLength      = 4096
)
