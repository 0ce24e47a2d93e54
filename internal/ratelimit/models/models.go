package models

import "time"

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until the window resets; set when not allowed.
	RetryAfter int
}

// Policy is a fixed window: at most Max requests per key within Window.
type Policy struct {
	Max    int
	Window time.Duration
}

// ExceededMessage is shown to clients that hit the limit.
const ExceededMessage = "請求過於頻繁，請稍後再試"
