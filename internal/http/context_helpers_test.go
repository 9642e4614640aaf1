package httpx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/gitnudge/portal/internal/domain/auth"
)

func TestSessionContext(t *testing.T) {
	assert.Nil(t, GetSessionFromContext(context.Background()))

	// nil leaves the context unchanged
	assert.Nil(t, GetSessionFromContext(SetSessionInContext(context.Background(), nil)))

	sess := &domainauth.Session{ID: "abc", UserID: "google-sub-1"}
	ctx := SetSessionInContext(context.Background(), sess)
	assert.Same(t, sess, GetSessionFromContext(ctx))
}

func TestDeviceIDContext(t *testing.T) {
	assert.Empty(t, DeviceIDFromContext(context.Background()))

	ctx := SetDeviceIDInContext(context.Background(), testDeviceID)
	assert.Equal(t, testDeviceID, DeviceIDFromContext(ctx))
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Equal(t, "req-1", RequestIDFromContext(SetRequestIDInContext(context.Background(), "req-1")))
}
