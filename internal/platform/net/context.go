// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyUser ctxKey = "user"

// WithRequestID stores reqID where chimw.GetReqID finds it
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// WithUser annotates context with the authenticated username
func WithUser(ctx context.Context, user string) context.Context {
	if user != "" {
		ctx = context.WithValue(ctx, keyUser, user)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// User returns the authenticated username on the context if present
func User(ctx context.Context) string {
	if v, ok := ctx.Value(keyUser).(string); ok {
		return v
	}
	return ""
}
