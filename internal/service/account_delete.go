package service

import (
	"context"

	domainauth "github.com/gitnudge/portal/internal/domain/auth"
	"github.com/gitnudge/portal/internal/observability/metrics"
)

// DeleteOutcome reports the backend's verdict on an account deletion.
type DeleteOutcome struct {
	Deleted bool
	Message string
}

// DeleteAccount asks the backend to delete the session's user. Nothing is
// sent unless confirmed is true. The session and local flags are left
// untouched either way.
func (s *AccountService) DeleteAccount(ctx context.Context, sess domainauth.Session, confirmed bool) (DeleteOutcome, error) {
	if !confirmed {
		return DeleteOutcome{}, ErrNotConfirmed
	}
	start := s.now()

	tok, err := s.bearer(sess)
	if err != nil {
		s.record(metrics.ActionDelete, metrics.ResultError, start, err)
		return DeleteOutcome{}, err
	}

	res, err := s.backend.DeleteUser(ctx, tok, sess.UserID)
	if err != nil {
		s.record(metrics.ActionDelete, metrics.ResultError, start, err)
		return DeleteOutcome{}, wrapf(err, "delete user %s", sess.UserID)
	}

	if !res.Success {
		s.record(metrics.ActionDelete, metrics.ResultRejected, start, nil)
		return DeleteOutcome{Message: res.Message}, nil
	}

	s.record(metrics.ActionDelete, metrics.ResultSuccess, start, nil)
	s.logger.InfoContext(ctx, "account deleted", "user_id", sess.UserID)
	return DeleteOutcome{Deleted: true, Message: res.Message}, nil
}
