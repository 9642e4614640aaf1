package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gitnudge/portal/internal/domain/account"
	"github.com/gitnudge/portal/internal/observability/metrics"
)

func TestRouter_SignInFlow(t *testing.T) {
	tests := []struct {
		name       string
		verify     account.VerifyResult
		verifyErr  error
		wantPath   string
		pending    bool
		registered bool
	}{
		{name: "new user", verify: account.VerifyResult{Success: true, IsNewUser: true}, wantPath: "/register", pending: true},
		{name: "returning user", verify: account.VerifyResult{Success: true}, wantPath: "/dashboard", registered: true},
		{name: "rejected token", verify: account.VerifyResult{}, wantPath: "/?signin=failed"},
		{name: "backend down", verifyErr: errors.New("dial tcp: refused"), wantPath: "/?signin=failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.backend.EXPECT().VerifyToken(gomock.Any(), "mock-id-token").Return(tt.verify, tt.verifyErr)

			login := f.do(browserGet("/auth/login"))
			require.Equal(t, http.StatusFound, login.Code)
			assert.Equal(t, "https://mock-idp/auth", login.Header().Get("Location"))

			res := login.Result()
			defer res.Body.Close()
			state := findCookie(res, stateCookieName)
			nonce := findCookie(res, nonceCookieName)
			require.NotNil(t, state)
			require.NotNil(t, nonce)

			cb := f.do(browserGet("/auth/callback?code=abc&state="+url.QueryEscape(state.Value), state, nonce))
			require.Equal(t, http.StatusFound, cb.Code)
			assert.Equal(t, tt.wantPath, cb.Header().Get("Location"))
			assert.Equal(t, tt.pending, f.hasFlag(t, account.RegistrationPendingFlag))
			assert.Equal(t, tt.registered, f.hasFlag(t, account.RegisteredFlagKey("mock-user-1")))
		})
	}
}

func TestRouter_RegisterSuccess(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.signIn(t, liveSession("sess-r", "uid-42"))
	f.setFlag(t, account.RegistrationPendingFlag)

	f.backend.EXPECT().Register(gomock.Any(), account.RegisterRequest{
		GoogleID:          "uid-42",
		NotificationEmail: "nudges@example.com",
		GitName:           "ada-l",
		Time:              "21:30",
	}).Return(account.RegisterResult{Success: true}, nil)

	w := f.do(browserPost("/register", registrationValues(), cookie))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	assert.True(t, f.hasFlag(t, account.RegisteredFlagKey("uid-42")))
	assert.False(t, f.hasFlag(t, account.RegistrationPendingFlag))

	dash := f.do(browserGet("/dashboard", cookie))
	assert.Equal(t, http.StatusOK, dash.Code)
	assert.NotContains(t, dash.Body.String(), `aria-disabled="true"`)
}

func TestRouter_RegisterBackendRejection(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.signIn(t, liveSession("sess-r", "uid-42"))
	f.setFlag(t, account.RegistrationPendingFlag)

	f.backend.EXPECT().Register(gomock.Any(), gomock.Any()).Return(account.RegisterResult{
		Message: "Registration closed",
	}, nil)

	w := f.do(asHTMX(browserPost("/register", registrationValues(), cookie)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Registration closed")
	assert.Contains(t, w.Header().Get("Hx-Trigger"), "Registration closed")
	assert.Empty(t, w.Header().Get("Hx-Redirect"))
	assert.True(t, f.hasFlag(t, account.RegistrationPendingFlag))
}

func TestRouter_RegisterInvalidFormSkipsBackend(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.signIn(t, liveSession("sess-r", "uid-42"))

	form := registrationValues()
	form.Set("notificationEmail", "not-an-email")
	w := f.do(browserPost("/register", form, cookie))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Enter a valid email address.")
}

func TestRouter_PendingRegistrationLocksNavigation(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.signIn(t, liveSession("sess-p", "uid-7"))
	f.setFlag(t, account.RegistrationPendingFlag)

	for _, path := range []string{"/dashboard", "/about", "/profile"} {
		w := f.do(browserGet(path, cookie))
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Contains(t, w.Body.String(), MsgNavigationLocked, path)

		hx := f.do(asHTMX(browserGet(path, cookie)))
		assert.Equal(t, http.StatusNoContent, hx.Code, path)
		assert.Contains(t, hx.Header().Get("Hx-Trigger"), MsgNavigationLocked, path)
	}

	reg := f.do(browserGet("/register", cookie))
	assert.Equal(t, http.StatusOK, reg.Code, "the registration form stays reachable")

	out := f.do(browserPost("/auth/logout", nil, cookie))
	assert.Equal(t, http.StatusSeeOther, out.Code, "sign-out is never gated")
	assert.Equal(t, "/", out.Header().Get("Location"))

	_, err := f.sessions.Get(context.Background(), "sess-p")
	assert.Error(t, err)
}

func TestRouter_RegisteredFlagOverridesPending(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.signIn(t, liveSession("sess-p", "uid-7"))
	f.setFlag(t, account.RegistrationPendingFlag)
	f.setFlag(t, account.RegisteredFlagKey("uid-7"))

	w := f.do(browserGet("/about", cookie))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_GatedPagesRequireSignIn(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(browserGet("/dashboard"))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login?redirect_uri=%2Fdashboard", w.Header().Get("Location"))
}

func TestRouter_DeleteAccount(t *testing.T) {
	t.Run("unconfirmed sends nothing", func(t *testing.T) {
		f := newRouterFixture(t)
		cookie := f.signIn(t, liveSession("sess-d", "uid-9"))

		w := f.do(asHTMX(browserPost("/account/delete", nil, cookie)))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Hx-Trigger"), MsgDeleteUnconfirmed)
	})

	t.Run("confirmed calls the backend", func(t *testing.T) {
		f := newRouterFixture(t)
		sess := liveSession("sess-d", "uid-9")
		cookie := f.signIn(t, sess)
		f.backend.EXPECT().DeleteUser(gomock.Any(), sess.IDToken, "uid-9").
			Return(account.DeleteResult{Success: true}, nil)

		w := f.do(asHTMX(browserPost("/account/delete", url.Values{"confirm": {"yes"}}, cookie)))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Hx-Trigger"), MsgAccountDeleted)

		_, err := f.sessions.Get(context.Background(), "sess-d")
		assert.NoError(t, err, "deletion does not sign the user out")
	})
}

func TestRouter_CSRFRejectsForgedPost(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.signIn(t, liveSession("sess-c", "uid-3"))

	req := browserGet("/account/delete", cookie)
	req.Method = http.MethodPost
	w := f.do(req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(browserGet("/no/such/page"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	static := f.do(browserGet("/static/missing.css"))
	assert.Equal(t, http.StatusNotFound, static.Code)
	assert.NotContains(t, static.Header().Get("Content-Type"), "text/html")
}

func TestRouter_StaticAssets(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(browserGet("/static/js/app.js"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), "showToast")
}

func TestRouter_RateLimitedLogin(t *testing.T) {
	f := newRouterFixture(t, func(s *RouterServices) {
		s.RateLimiter = NewRateLimiter(0.001, 1)
	})

	assert.Equal(t, http.StatusFound, f.do(browserGet("/auth/login")).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(browserGet("/auth/login")).Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics("portal", reg)
	f := newRouterFixture(t, func(s *RouterServices) {
		s.HTTPMetrics = httpMetrics
		s.Gatherer = reg
	})

	f.do(browserGet("/"))
	w := f.do(browserGet("/metrics"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal_http_requests_total")
	assert.InDelta(t, 1, testutil.ToFloat64(httpMetrics.RequestsTotal.WithLabelValues("GET /{$}", "GET", "200")), 0)
}
