package wrap

import (
	"context"
	"errors"
)

// Error attaches the LogCtx currently held in ctx to err. Call it at the
// failure site; ErrorCtx restores the context where the error is logged.
// A nil err stays nil.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	// An already wrapped error only gets its LogCtx refreshed
	var e *errorWithLogCtx
	if errors.As(err, &e) {
		if x, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
			e.logCtx = x
		}
		e.err = err
		return e
	}

	c := LogCtx{}
	if x, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		c = x
	}
	return &errorWithLogCtx{
		err:    err,
		logCtx: c,
	}
}
