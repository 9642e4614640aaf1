package service

import (
	"context"
	"fmt"

	"github.com/gitnudge/portal/internal/domain/account"
	"github.com/gitnudge/portal/internal/observability/metrics"
)

// NavigationLocked reports whether uid must finish registration before
// using gated pages on this browser.
func (s *AccountService) NavigationLocked(ctx context.Context, deviceID, uid string) (bool, error) {
	if deviceID == "" {
		return false, nil
	}

	registered, err := s.flags.Has(ctx, deviceID, account.RegisteredFlagKey(uid))
	if err != nil {
		return false, fmt.Errorf("read registered flag: %w", err)
	}
	pending, err := s.flags.Has(ctx, deviceID, account.RegistrationPendingFlag)
	if err != nil {
		return false, fmt.Errorf("read pending flag: %w", err)
	}
	return account.NavigationLocked(registered, pending), nil
}

// RecordBlockedNavigation counts a navigation attempt refused by the gate.
func (s *AccountService) RecordBlockedNavigation(page string) {
	metrics.EmitNavigationBlocked(s.metrics, page)
}
