// Package tracer is a small tracing abstraction used by the registration
// service and the sheet store. Services depend on Tracer; main wires either
// NoopTracer or the OpenTelemetry adapter.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span; a non-nil err marks it failed. Call exactly once.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashNationalID returns a short SHA-256 digest so spans for the same person
// correlate without carrying the identifier.
func HashNationalID(nationalID string) string {
	if nationalID == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(nationalID))
	return hex.EncodeToString(hash[:8])
}

// Span names.
const (
	SpanLookup     = "registration.lookup"
	SpanCancel     = "registration.cancel"
	SpanConfirm    = "registration.confirm"
	SpanSheetRead  = "sheet.read"
	SpanSheetWrite = "sheet.write"
	SpanNotify     = "notify.send"
	SpanVerify     = "verification.check"
)

// Attribute keys.
const (
	AttrNationalID = "national_id_hash"
	AttrCourse     = "course_name"
	AttrRow        = "sheet.row"
	AttrRowCount   = "sheet.row_count"
	AttrMatches    = "registration.matches"
	AttrOutcome    = "outcome"
	AttrProvider   = "notify.provider"
)
