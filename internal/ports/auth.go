// Package ports declares what the portal needs from the outside world:
// Google sign-in, session and flag storage, and the registration backend.
// Adapters under internal/adapters implement them.
package ports

import (
	"context"

	domainauth "github.com/gitnudge/portal/internal/domain/auth"
)

// BeginInput carries the post-login redirect chosen by the browser.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput is what the callback hands back: the authorization code plus
// the state and nonce minted by Begin.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider runs the redirect-based sign-in. Exchange must verify the ID
// token's nonce and return the raw token so it can be presented to the backend.
type AuthProvider interface {
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore keeps signed-in sessions server side, keyed by the opaque id
// in the session cookie. Get reports a missing or expired session as an error.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}
