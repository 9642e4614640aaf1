package testutil

import (
	"time"

	"github.com/gitnudge/portal/internal/domain/account"
	domainauth "github.com/gitnudge/portal/internal/domain/auth"
)

// SessionBuilder provides a fluent interface for building sessions in tests.
type SessionBuilder struct {
	sess domainauth.Session
}

// NewSession returns a builder for a valid, unexpired session.
func NewSession() *SessionBuilder {
	return &SessionBuilder{sess: domainauth.Session{
		ID:        "sess-1",
		UserID:    "google-sub-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		IDToken:   "id-token-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}}
}

// WithID sets the session ID.
func (b *SessionBuilder) WithID(id string) *SessionBuilder {
	b.sess.ID = id
	return b
}

// WithUserID sets the Google subject.
func (b *SessionBuilder) WithUserID(uid string) *SessionBuilder {
	b.sess.UserID = uid
	return b
}

// WithIDToken sets the bearer token.
func (b *SessionBuilder) WithIDToken(tok string) *SessionBuilder {
	b.sess.IDToken = tok
	return b
}

// WithExpiresAt sets the expiry.
func (b *SessionBuilder) WithExpiresAt(at time.Time) *SessionBuilder {
	b.sess.ExpiresAt = at
	return b
}

// Build returns the session.
func (b *SessionBuilder) Build() domainauth.Session { return b.sess }

// ValidRegistrationForm returns a form that passes local validation.
func ValidRegistrationForm() account.RegistrationForm {
	return account.RegistrationForm{
		NotificationEmail: "notify@example.com",
		GitName:           "octocat",
		Hour:              "21",
		Minute:            "30",
	}
}
