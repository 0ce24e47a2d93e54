// Package device summarizes User-Agent strings for audit logs.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Summary is the parsed, log-friendly view of a User-Agent.
type Summary struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// Parse extracts browser, OS and device class from a User-Agent string.
func Parse(userAgent string) Summary {
	if userAgent == "" || userAgent == "unknown" {
		return Summary{}
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()
	if ua.Mobile() && ua.Platform() != "" {
		os = ua.Platform()
	}
	return Summary{
		Browser: strings.TrimSpace(browser),
		OS:      strings.TrimSpace(os),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// String returns "Browser on OS", e.g. "Chrome on Intel Mac OS X 10_15_7".
func (s Summary) String() string {
	if s.Browser == "" && s.OS == "" {
		return "Unknown Device"
	}
	browser, os := s.Browser, s.OS
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}

// Class is "bot", "mobile" or "desktop".
func (s Summary) Class() string {
	switch {
	case s.Bot:
		return "bot"
	case s.Mobile:
		return "mobile"
	default:
		return "desktop"
	}
}
