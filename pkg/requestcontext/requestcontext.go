// Package requestcontext holds request-scoped values shared by middleware,
// handlers and services.
package requestcontext

import "context"

type (
	requestIDKey struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
)

// Unknown is recorded when the client address or user agent is not available.
const Unknown = "unknown"

// WithRequestID stores the correlation id for the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation id, or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata stores the resolved client IP and User-Agent.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// ClientIP returns the resolved client IP, or "" when the metadata middleware did not run.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// UserAgent returns the request User-Agent, or "".
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// ClientIPOrUnknown is ClientIP with the "unknown" placeholder for empty values.
func ClientIPOrUnknown(ctx context.Context) string {
	if ip := ClientIP(ctx); ip != "" {
		return ip
	}
	return Unknown
}

// UserAgentOrUnknown is UserAgent with the "unknown" placeholder for empty values.
func UserAgentOrUnknown(ctx context.Context) string {
	if ua := UserAgent(ctx); ua != "" {
		return ua
	}
	return Unknown
}
