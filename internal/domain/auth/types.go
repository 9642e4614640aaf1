package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"time"
)

// ErrNoBearerToken is returned when a session cannot authorize backend calls.
var ErrNoBearerToken = errors.New("session has no usable bearer token")

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // Google subject identifier, used as the account uid
	FirstName string
	LastName  string
	Email     string
	IDToken   string    // raw OIDC ID token presented to the backend as a bearer token
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	IDToken   string    `json:"id_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DisplayName returns the best human-readable name for the session.
func (s Session) DisplayName() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "":
		return s.FirstName
	default:
		return s.Email
	}
}

// BearerToken returns the ID token for authorizing backend calls.
func (s Session) BearerToken(now time.Time) (string, error) {
	if s.IDToken == "" {
		return "", ErrNoBearerToken
	}
	if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
		return "", ErrNoBearerToken
	}
	return s.IDToken, nil
}
