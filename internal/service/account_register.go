package service

import (
	"context"

	"github.com/gitnudge/portal/internal/domain/account"
	domainauth "github.com/gitnudge/portal/internal/domain/auth"
	apperrors "github.com/gitnudge/portal/internal/errors"
	"github.com/gitnudge/portal/internal/observability/metrics"
)

// RegisterOutcome reports the backend's verdict on a registration.
type RegisterOutcome struct {
	Registered  bool
	Message     string
	FieldErrors map[string]string
}

// Register submits a locally validated form on behalf of the session's
// user. The session uid is always sent as googleId. A backend rejection is
// an outcome, not an error; errors mean the call itself failed.
func (s *AccountService) Register(
	ctx context.Context,
	deviceID string,
	sess domainauth.Session,
	form account.RegistrationForm,
) (RegisterOutcome, error) {
	start := s.now()

	if sess.UserID == "" {
		return RegisterOutcome{}, apperrors.Unauthorized("no signed-in user")
	}
	notifyAt, err := form.Time()
	if err != nil {
		return RegisterOutcome{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid notification time")
	}

	res, err := s.backend.Register(ctx, account.NewRegisterRequest(sess.UserID, form, notifyAt))
	if err != nil {
		s.record(metrics.ActionRegister, metrics.ResultError, start, err)
		return RegisterOutcome{}, wrapf(err, "register user %s", sess.UserID)
	}

	if !res.Success {
		s.record(metrics.ActionRegister, metrics.ResultRejected, start, nil)
		s.logger.InfoContext(ctx, "registration rejected", "user_id", sess.UserID, "fields", len(res.Errors))
		return RegisterOutcome{Message: res.Message, FieldErrors: res.Errors}, nil
	}

	s.record(metrics.ActionRegister, metrics.ResultSuccess, start, nil)
	s.markRegistered(ctx, deviceID, sess.UserID)
	s.logger.InfoContext(ctx, "user registered", "user_id", sess.UserID, "time", notifyAt.String())
	return RegisterOutcome{Registered: true, Message: res.Message}, nil
}
