// Package metrics emits portal metrics: account action counters over StatsD
// and HTTP request metrics for Prometheus.
package metrics

import (
	"maps"
	"time"

	obserrors "github.com/gitnudge/portal/internal/observability/errors"
	"github.com/gitnudge/portal/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Account actions.
const (
	ActionLogin    = "login"
	ActionRegister = "register"
	ActionDelete   = "delete"
)

// AccountMetric captures one backend-facing account action.
type AccountMetric struct {
	Action   string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitAccountAction emits account.action and account.duration.
func EmitAccountAction(sink statsd.Sink, in AccountMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"action": in.Action,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("account.action", 1, tags)
	if in.Duration > 0 {
		sink.Timing("account.duration", in.Duration, maps.Clone(tags))
	}
}

// EmitNavigationBlocked counts a gated navigation attempt.
func EmitNavigationBlocked(sink statsd.Sink, page string) {
	if sink == nil {
		return
	}
	sink.Count("nav.blocked", 1, map[string]string{"page": page})
}
