package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldNoteID is the field name for note ID.
	LogFieldNoteID = "note_id"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldOperation is the field name for the operation name.
	LogFieldOperation = "operation"
)

// RequestContext carries request-scoped structured logging state. It is
// created per request and discarded with it; no cross-request state lives
// here.
type RequestContext struct {
	RequestID string
	Operation string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRequestContext creates a new request context with a generated request ID.
func NewRequestContext(logger *slog.Logger, operation string) *RequestContext {
	if logger == nil {
		logger = slog.Default()
	}
	requestID := uuid.New().String()
	return &RequestContext{
		RequestID: requestID,
		Operation: operation,
		StartTime: time.Now(),
		Logger: logger.With(
			slog.String(LogFieldRequestID, requestID),
			slog.String(LogFieldOperation, operation),
		),
	}
}

// Info logs an info message with the request's base fields attached.
func (r *RequestContext) Info(msg string, args ...any) {
	r.Logger.Info(msg, args...)
}

// Warn logs a warning message with the request's base fields attached.
func (r *RequestContext) Warn(msg string, args ...any) {
	r.Logger.Warn(msg, args...)
}

// Error logs an error message with the request's base fields attached.
func (r *RequestContext) Error(msg string, args ...any) {
	r.Logger.Error(msg, args...)
}

// DurationMs returns the elapsed time in milliseconds.
func (r *RequestContext) DurationMs() int64 {
	return time.Since(r.StartTime).Milliseconds()
}

type ctxKey struct{}

// WithRequestContext adds the request context to the context.
func WithRequestContext(ctx context.Context, reqCtx *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, reqCtx)
}

// FromContext extracts the request context, or a fresh unnamed one so
// callers can always log without a nil check.
func FromContext(ctx context.Context) *RequestContext {
	if reqCtx, ok := ctx.Value(ctxKey{}).(*RequestContext); ok {
		return reqCtx
	}
	return NewRequestContext(slog.Default(), "unknown")
}
