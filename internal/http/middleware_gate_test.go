package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gitnudge/portal/internal/testutil"
)

func gateUnder(t *testing.T, accounts *stubAccounts) http.Handler {
	t.Helper()
	mw := requireRegistrationComplete(gateConfig{
		Gate: accounts,
		Render: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("gate page"))
		},
		Logger: discardLogger(),
	}, PageDashboard)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("dashboard"))
	}))
}

func TestRequireRegistrationComplete(t *testing.T) {
	sess := testutil.NewSession().Build()

	t.Run("unlocked passes through", func(t *testing.T) {
		var gotDevice, gotUID string
		accounts := &stubAccounts{lockedFunc: func(_ context.Context, deviceID, uid string) (bool, error) {
			gotDevice, gotUID = deviceID, uid
			return false, nil
		}}
		w := httptest.NewRecorder()
		gateUnder(t, accounts).ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), &sess))

		assert.Equal(t, "dashboard", w.Body.String())
		assert.Equal(t, testDeviceID, gotDevice)
		assert.Equal(t, "google-sub-1", gotUID)
		assert.Empty(t, accounts.blocked)
	})

	t.Run("locked page request renders the gate", func(t *testing.T) {
		accounts := &stubAccounts{lockedFunc: func(context.Context, string, string) (bool, error) { return true, nil }}
		w := httptest.NewRecorder()
		gateUnder(t, accounts).ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), &sess))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "gate page", w.Body.String())
		assert.Equal(t, []string{PageDashboard}, accounts.blocked)
	})

	t.Run("locked htmx request gets a toast", func(t *testing.T) {
		accounts := &stubAccounts{lockedFunc: func(context.Context, string, string) (bool, error) { return true, nil }}
		req := asHTMX(withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), &sess))
		w := httptest.NewRecorder()
		gateUnder(t, accounts).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Hx-Trigger"), MsgNavigationLocked)
		assert.Empty(t, w.Body.String())
	})

	t.Run("store failure lets the request through", func(t *testing.T) {
		accounts := &stubAccounts{lockedFunc: func(context.Context, string, string) (bool, error) {
			return false, errors.New("redis down")
		}}
		w := httptest.NewRecorder()
		gateUnder(t, accounts).ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), &sess))

		assert.Equal(t, "dashboard", w.Body.String())
	})

	t.Run("no session is left to auth", func(t *testing.T) {
		accounts := &stubAccounts{lockedFunc: func(context.Context, string, string) (bool, error) {
			t.Fatal("gate must not be consulted without a session")
			return true, nil
		}}
		w := httptest.NewRecorder()
		gateUnder(t, accounts).ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), nil))

		assert.Equal(t, "dashboard", w.Body.String())
	})
}
