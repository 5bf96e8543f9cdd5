package wrap

import (
	"context"
	"errors"
)

// errorWithLogCtx carries the LogCtx captured at the point of failure up
// the call chain, so the handler that finally logs the error can attach
// the action and bus number of where it actually happened.
type errorWithLogCtx struct {
	err    error
	logCtx LogCtx
}

func (e *errorWithLogCtx) Error() string {
	return e.err.Error()
}

func (e *errorWithLogCtx) Unwrap() error {
	return e.err
}

// ErrorCtx returns ctx with the LogCtx recovered from err, when err was
// wrapped with Error. Otherwise ctx is returned unchanged.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *errorWithLogCtx
	if errors.As(err, &e) && e != nil {
		return context.WithValue(ctx, LogCtxKey, e.logCtx)
	}
	return ctx
}
