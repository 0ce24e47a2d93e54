package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		assertion func(t *testing.T, s Summary)
	}{
		{
			name:      "empty user agent",
			userAgent: "",
			assertion: func(t *testing.T, s Summary) {
				assert.Equal(t, "Unknown Device", s.String())
				assert.Equal(t, "desktop", s.Class())
			},
		},
		{
			name:      "placeholder recorded by the metadata middleware",
			userAgent: "unknown",
			assertion: func(t *testing.T, s Summary) {
				assert.Equal(t, "Unknown Device", s.String())
			},
		},
		{
			name:      "chrome on desktop",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			assertion: func(t *testing.T, s Summary) {
				assert.Equal(t, "Chrome", s.Browser)
				assert.Contains(t, s.String(), "Chrome on ")
				assert.Equal(t, "desktop", s.Class())
			},
		},
		{
			name:      "safari on iphone",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			assertion: func(t *testing.T, s Summary) {
				assert.Contains(t, s.String(), "iPhone")
				assert.Equal(t, "mobile", s.Class())
			},
		},
		{
			name:      "crawler",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			assertion: func(t *testing.T, s Summary) {
				assert.Equal(t, "bot", s.Class())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assertion(t, Parse(tt.userAgent))
		})
	}
}
