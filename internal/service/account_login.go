package service

import (
	"context"

	"github.com/gitnudge/portal/internal/domain/account"
	domainauth "github.com/gitnudge/portal/internal/domain/auth"
	apperrors "github.com/gitnudge/portal/internal/errors"
	"github.com/gitnudge/portal/internal/observability/metrics"
)

// Destination is where a browser goes after sign-in.
type Destination string

const (
	DestinationLanding   Destination = "/"
	DestinationRegister  Destination = "/register"
	DestinationDashboard Destination = "/dashboard"
)

// VerifyLogin presents the session's ID token to the backend and decides
// where the user lands. New users are flagged pending and sent to the
// registration form; known users are flagged registered. A rejected or
// failed verification sends the browser to the landing page with an error.
func (s *AccountService) VerifyLogin(ctx context.Context, deviceID string, sess domainauth.Session) (Destination, error) {
	start := s.now()

	tok, err := s.bearer(sess)
	if err != nil {
		s.record(metrics.ActionLogin, metrics.ResultError, start, err)
		return DestinationLanding, err
	}

	res, err := s.backend.VerifyToken(ctx, tok)
	if err != nil {
		s.record(metrics.ActionLogin, metrics.ResultError, start, err)
		return DestinationLanding, wrapf(err, "verify token")
	}
	if !res.Success {
		s.record(metrics.ActionLogin, metrics.ResultRejected, start, nil)
		return DestinationLanding, apperrors.Unauthorized("backend rejected the sign-in")
	}

	s.record(metrics.ActionLogin, metrics.ResultSuccess, start, nil)

	if res.IsNewUser {
		if err := s.flags.Set(ctx, deviceID, account.RegistrationPendingFlag); err != nil {
			s.logger.WarnContext(ctx, "set pending flag failed", "user_id", sess.UserID, "error", err)
		}
		return DestinationRegister, nil
	}

	s.markRegistered(ctx, deviceID, sess.UserID)
	return DestinationDashboard, nil
}
