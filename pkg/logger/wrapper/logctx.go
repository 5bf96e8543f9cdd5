package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action    string
		RequestID string
		BusNumber string
	}

	// logCtxKeyStruct is an unexported type for context keys defined in this package.
	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

// WithLogCtx returns a new context with the provided LogCtx
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	// Check if there's an existing LogCtx and merge values
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		if newLc.Action == "" {
			newLc.Action = lc.Action
		}
		if newLc.RequestID == "" {
			newLc.RequestID = lc.RequestID
		}
		if newLc.BusNumber == "" {
			newLc.BusNumber = lc.BusNumber
		}
	}
	return context.WithValue(ctx, LogCtxKey, newLc)
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		lc.Action = action
		return context.WithValue(ctx, LogCtxKey, lc)
	}
	return context.WithValue(ctx, LogCtxKey, LogCtx{Action: action})
}

// WithRequestID adds or updates the RequestID in the LogCtx within the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		lc.RequestID = requestID
		return context.WithValue(ctx, LogCtxKey, lc)
	}
	return context.WithValue(ctx, LogCtxKey, LogCtx{RequestID: requestID})
}

// WithBusNumber adds or updates the BusNumber in the LogCtx within the context
func WithBusNumber(ctx context.Context, busNumber string) context.Context {
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		lc.BusNumber = busNumber
		return context.WithValue(ctx, LogCtxKey, lc)
	}
	return context.WithValue(ctx, LogCtxKey, LogCtx{BusNumber: busNumber})
}
