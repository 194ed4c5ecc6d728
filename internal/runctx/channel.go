// Package runctx holds small helpers for goroutines that drain channels
// until their context ends.
package runctx

import (
	"context"

	"asa-manager/internal/logging"
)

// RecvOrDone waits for the next value on in. It reports false once ctx is
// done or in is closed; a context that is already done wins over a ready value.
func RecvOrDone[T any](ctx context.Context, name string, logger *logging.Logger, in <-chan T) (T, bool) {
	if logger == nil {
		panic("runctx.RecvOrDone: logger must not be nil")
	}
	var zero T
	if err := ctx.Err(); err != nil {
		logger.Debug("stopping "+name+": context canceled", logging.Field("error", err))
		return zero, false
	}
	select {
	case <-ctx.Done():
		logger.Debug("stopping "+name+": context canceled", logging.Field("error", ctx.Err()))
		return zero, false
	case v, ok := <-in:
		if !ok {
			logger.Debug("stopping " + name + ": input channel closed")
		}
		return v, ok
	}
}
