package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regdesk/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		remoteAddr     string
		trustedProxies []string
		expectedIP     string
		expectedUA     string
	}{
		{
			name:       "ignores XFF from an untrusted peer",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1", "User-Agent": "Mozilla/5.0"},
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
			expectedUA: "Mozilla/5.0",
		},
		{
			name:           "uses first XFF entry from a trusted proxy",
			headers:        map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2", "User-Agent": "curl/8.5.0"},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "203.0.113.1",
			expectedUA:     "curl/8.5.0",
		},
		{
			name:           "uses X-Real-IP from a trusted single address",
			headers:        map[string]string{"X-Real-IP": "198.51.100.7", "User-Agent": "ua"},
			remoteAddr:     "127.0.0.1:4000",
			trustedProxies: []string{"127.0.0.1"},
			expectedIP:     "198.51.100.7",
			expectedUA:     "ua",
		},
		{
			name:           "falls back to peer when XFF is garbage",
			headers:        map[string]string{"X-Forwarded-For": "not-an-ip", "User-Agent": "ua"},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "10.0.0.1",
			expectedUA:     "ua",
		},
		{
			name:       "unmaps IPv4-in-IPv6 peers",
			headers:    map[string]string{"User-Agent": "ua"},
			remoteAddr: "[::ffff:192.0.2.10]:443",
			expectedIP: "192.0.2.10",
			expectedUA: "ua",
		},
		{
			name:       "records unknown for missing user agent and address",
			headers:    map[string]string{},
			remoteAddr: "",
			expectedIP: requestcontext.Unknown,
			expectedUA: requestcontext.Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefixes, err := ParseTrustedProxies(tt.trustedProxies)
			require.NoError(t, err)

			var capturedCtx context.Context
			handler := NewMiddleware(&Config{TrustedProxies: prefixes}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedCtx = r.Context()
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/cancel", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Del("User-Agent")
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expectedIP, requestcontext.ClientIP(capturedCtx))
			assert.Equal(t, tt.expectedUA, requestcontext.UserAgent(capturedCtx))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "", "::1", "192.168.1.77/24"})
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "::1/128", prefixes[1].String())
	assert.Equal(t, "192.168.1.0/24", prefixes[2].String())

	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}
