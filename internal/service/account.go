package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gitnudge/portal/internal/domain/account"
	domainauth "github.com/gitnudge/portal/internal/domain/auth"
	apperrors "github.com/gitnudge/portal/internal/errors"
	"github.com/gitnudge/portal/internal/observability/metrics"
	"github.com/gitnudge/portal/internal/observability/statsd"
	"github.com/gitnudge/portal/internal/ports"
)

// Telemetry groups the optional logging and metrics sinks of a service.
type Telemetry struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// AccountServiceOptions groups dependencies for AccountService.
type AccountServiceOptions struct {
	Backend   ports.BackendAPI // Required: registration backend
	Flags     ports.FlagStore  // Required: per-browser registration flags
	Telemetry Telemetry        // Optional
}

// AccountService drives the backend-facing account flows: login
// verification, registration and deletion, and owns the local flags that
// gate navigation.
type AccountService struct {
	backend ports.BackendAPI
	flags   ports.FlagStore
	logger  *slog.Logger
	metrics statsd.Sink
	now     func() time.Time
}

// NewAccountService constructs a new AccountService.
func NewAccountService(opts AccountServiceOptions) *AccountService {
	if opts.Backend == nil {
		//nolint:forbidigo // Service construction must fail fast during wiring when dependencies are missing
		panic("BackendAPI is required")
	}
	if opts.Flags == nil {
		//nolint:forbidigo // Service construction must fail fast during wiring when dependencies are missing
		panic("FlagStore is required")
	}
	logger := opts.Telemetry.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		backend: opts.Backend,
		flags:   opts.Flags,
		logger:  logger.With("component", "account_service"),
		metrics: opts.Telemetry.Metrics,
		now:     time.Now,
	}
}

// bearer returns the session's usable ID token.
func (s *AccountService) bearer(sess domainauth.Session) (string, error) {
	tok, err := sess.BearerToken(s.now())
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "sign in again to continue")
	}
	return tok, nil
}

func (s *AccountService) record(action, result string, start time.Time, err error) {
	metrics.EmitAccountAction(s.metrics, metrics.AccountMetric{
		Action:   action,
		Result:   result,
		Duration: s.now().Sub(start),
		Err:      err,
	})
}

// markRegistered records that uid completed registration on this browser.
// Flag failures are logged, not returned: the backend call already succeeded.
func (s *AccountService) markRegistered(ctx context.Context, deviceID, uid string) {
	if err := s.flags.Set(ctx, deviceID, account.RegisteredFlagKey(uid)); err != nil {
		s.logger.WarnContext(ctx, "set registered flag failed", "user_id", uid, "error", err)
	}
	if err := s.flags.Clear(ctx, deviceID, account.RegistrationPendingFlag); err != nil {
		s.logger.WarnContext(ctx, "clear pending flag failed", "user_id", uid, "error", err)
	}
}

// ErrNotConfirmed is returned when a destructive action lacks confirmation.
var ErrNotConfirmed = errors.New("action not confirmed")

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
