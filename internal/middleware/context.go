package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyRequestID ctxKey = "req_id"
	ctxKeyIsHTMX    ctxKey = "is_htmx"
	ctxKeyHXTarget  ctxKey = "hx_target"
)

// WithRequestID stores request id in context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	return v, ok
}

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithHXTarget stores the id of the element htmx will swap.
func WithHXTarget(ctx context.Context, target string) context.Context {
	return context.WithValue(ctx, ctxKeyHXTarget, target)
}

// HXTarget returns the swap target of an htmx request, if any.
func HXTarget(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyHXTarget).(string)
	return v
}
