package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/gitnudge/portal/internal/errors"
)

type customErr struct{}

func (*customErr) Error() string { return "custom" }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "app error", err: fmt.Errorf("wrap: %w", apperrors.Unauthorized("x")), want: "unauthorized"},
		{name: "upstream", err: apperrors.MapUpstreamError(context.DeadlineExceeded, "register"), want: "timeout"},
		{name: "pointer type", err: fmt.Errorf("wrap: %w", &customErr{}), want: "errors_customerr"},
		{name: "plain", err: errors.New("boom"), want: "errors_errorstring"},
		{name: "canceled", err: fmt.Errorf("gate: %w", context.Canceled), want: ClassCanceled},
		{name: "deadline", err: context.DeadlineExceeded, want: ClassTimeout},
		{name: "redis nil", err: fmt.Errorf("get flags: %w", redis.Nil), want: ClassRedisNil},
		{name: "dial refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, want: ClassNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
