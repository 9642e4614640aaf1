package ports

import (
	"context"

	"github.com/gitnudge/portal/internal/domain/account"
)

// BackendAPI is the registration backend. A (result, nil) return means the
// backend answered; the result's Success field carries its verdict. A non-nil
// error means the call failed in transport or the body could not be decoded.
type BackendAPI interface {
	VerifyToken(ctx context.Context, idToken string) (account.VerifyResult, error)
	Register(ctx context.Context, req account.RegisterRequest) (account.RegisterResult, error)
	DeleteUser(ctx context.Context, idToken, uid string) (account.DeleteResult, error)
}

// FlagStore keeps presence flags scoped to one browser.
type FlagStore interface {
	Has(ctx context.Context, scope, key string) (bool, error)
	Set(ctx context.Context, scope, key string) error
	Clear(ctx context.Context, scope, key string) error
}
