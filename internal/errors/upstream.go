package errors

import (
	"context"
	"errors"
	"net"
)

// MapUpstreamError maps failures of an outbound backend call to AppError
// instances:
// - context deadline or net timeouts → Timeout
// - context cancellation → Canceled
// - anything else → Upstream
//
// Existing AppErrors are returned unchanged.
func MapUpstreamError(err error, op string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: op + " was canceled", Cause: err}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &AppError{Code: ErrCodeTimeout, Message: op + " timed out", Cause: err}
	}

	return &AppError{Code: ErrCodeUpstream, Message: op + " failed", Cause: err}
}
