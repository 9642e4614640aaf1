package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gitnudge/portal/internal/domain/account"
	domainauth "github.com/gitnudge/portal/internal/domain/auth"
	"github.com/gitnudge/portal/internal/http/validation"
	"github.com/gitnudge/portal/internal/mocks"
	mockauth "github.com/gitnudge/portal/internal/mocks/auth"
	"github.com/gitnudge/portal/internal/service"
	"github.com/gitnudge/portal/internal/testutil"
)

const (
	testDeviceID  = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	testCSRFToken = "test-csrf-token"
)

// RequireTemplateRenderer creates a TemplateRenderer for tests, skipping the test if templates are not available.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
		return nil
	}
	return tr
}

// ContainsAll checks if a string contains all the given substrings.
func ContainsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// withSession attaches sess and the test device to r the way the router's
// middleware would.
func withSession(r *http.Request, sess *domainauth.Session) *http.Request {
	ctx := SetDeviceIDInContext(r.Context(), testDeviceID)
	if sess != nil {
		ctx = SetSessionInContext(ctx, sess)
	}
	return r.WithContext(ctx)
}

// mockAuthService is a test double for service.AuthService.
type mockAuthService struct {
	beginLoginFunc    func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	completeLoginFunc func(ctx context.Context, input service.CompleteLoginInput) (domainauth.Session, error)
	getSessionFunc    func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	logoutFunc        func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if m.beginLoginFunc != nil {
		return m.beginLoginFunc(ctx, redirectURL)
	}
	return &service.BeginLoginResult{
		AuthURL: "https://accounts.example.com/auth?state=test-state",
		State:   "test-state",
		Nonce:   "test-nonce",
	}, nil
}

func (m *mockAuthService) CompleteLogin(
	ctx context.Context,
	input service.CompleteLoginInput,
) (domainauth.Session, error) {
	if m.completeLoginFunc != nil {
		return m.completeLoginFunc(ctx, input)
	}
	return testutil.NewSession().Build(), nil
}

func (m *mockAuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if m.getSessionFunc != nil {
		return m.getSessionFunc(ctx, sessionID)
	}
	sess := testutil.NewSession().WithID(sessionID).Build()
	return &sess, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}

// stubAccounts is a hand-written AccountServiceInterface double.
type stubAccounts struct {
	lockedFunc   func(ctx context.Context, deviceID, uid string) (bool, error)
	verifyFunc   func(ctx context.Context, deviceID string, sess domainauth.Session) (service.Destination, error)
	registerFunc func(
		ctx context.Context, deviceID string, sess domainauth.Session, form account.RegistrationForm,
	) (service.RegisterOutcome, error)
	deleteFunc func(ctx context.Context, sess domainauth.Session, confirmed bool) (service.DeleteOutcome, error)

	mu      sync.Mutex
	blocked []string
}

func (s *stubAccounts) NavigationLocked(ctx context.Context, deviceID, uid string) (bool, error) {
	if s.lockedFunc != nil {
		return s.lockedFunc(ctx, deviceID, uid)
	}
	return false, nil
}

func (s *stubAccounts) RecordBlockedNavigation(page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked = append(s.blocked, page)
}

func (s *stubAccounts) VerifyLogin(
	ctx context.Context,
	deviceID string,
	sess domainauth.Session,
) (service.Destination, error) {
	if s.verifyFunc != nil {
		return s.verifyFunc(ctx, deviceID, sess)
	}
	return service.DestinationDashboard, nil
}

func (s *stubAccounts) Register(
	ctx context.Context,
	deviceID string,
	sess domainauth.Session,
	form account.RegistrationForm,
) (service.RegisterOutcome, error) {
	if s.registerFunc != nil {
		return s.registerFunc(ctx, deviceID, sess, form)
	}
	return service.RegisterOutcome{Registered: true}, nil
}

func (s *stubAccounts) DeleteAccount(
	ctx context.Context,
	sess domainauth.Session,
	confirmed bool,
) (service.DeleteOutcome, error) {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, sess, confirmed)
	}
	return service.DeleteOutcome{Deleted: confirmed}, nil
}

// newUIHandlers builds UIHandlers over the on-disk templates.
func newUIHandlers(t *testing.T, accounts AccountServiceInterface) *UIHandlers {
	t.Helper()
	return &UIHandlers{
		T:         RequireTemplateRenderer(t),
		Accounts:  accounts,
		Validator: validation.New(),
		Logger:    discardLogger(),
	}
}

// routerFixture runs the full router over real services, in-memory stores
// and a gomock backend.
type routerFixture struct {
	handler  http.Handler
	backend  *mocks.MockBackendAPI
	provider *mockauth.MockAuthProvider
	sessions *mockauth.MemorySessionStore
	flags    *mockauth.MemoryFlagStore
}

func newRouterFixture(t *testing.T, customize ...func(*RouterServices)) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &routerFixture{
		backend:  mocks.NewMockBackendAPI(ctrl),
		provider: mockauth.NewMockAuthProvider(),
		sessions: mockauth.NewMemorySessionStore(),
		flags:    mockauth.NewMemoryFlagStore(),
	}

	services := RouterServices{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Provider: f.provider,
			Sessions: f.sessions,
			Logger:   discardLogger(),
		}),
		Accounts: service.NewAccountService(service.AccountServiceOptions{
			Backend:   f.backend,
			Flags:     f.flags,
			Telemetry: service.Telemetry{Logger: discardLogger()},
		}),
		Validator: validation.New(),
		Logger:    discardLogger(),
	}
	for _, fn := range customize {
		fn(&services)
	}
	f.handler = NewRouter(services)
	return f
}

// signIn stores a live session for sess and returns its cookie.
func (f *routerFixture) signIn(t *testing.T, sess domainauth.Session) *http.Cookie {
	t.Helper()
	require.NoError(t, f.sessions.Save(context.Background(), sess))
	return &http.Cookie{Name: SessionCookieName, Value: sess.ID}
}

func (f *routerFixture) setFlag(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, f.flags.Set(context.Background(), testDeviceID, key))
}

func (f *routerFixture) hasFlag(t *testing.T, key string) bool {
	t.Helper()
	ok, err := f.flags.Has(context.Background(), testDeviceID, key)
	require.NoError(t, err)
	return ok
}

func (f *routerFixture) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	return rec
}

// browserGet builds a GET carrying the test device cookie and any extras.
func browserGet(target string, cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.AddCookie(&http.Cookie{Name: DeviceCookieName, Value: testDeviceID})
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

// browserPost builds a form POST with a valid double-submit CSRF token.
func browserPost(target string, form url.Values, cookies ...*http.Cookie) *http.Request {
	if form == nil {
		form = url.Values{}
	}
	form.Set(DefaultCSRFCookieName, testCSRFToken)
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: DeviceCookieName, Value: testDeviceID})
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func asHTMX(r *http.Request) *http.Request {
	r.Header.Set("Hx-Request", "true")
	return r
}

func liveSession(id, uid string) domainauth.Session {
	return testutil.NewSession().WithID(id).WithUserID(uid).WithExpiresAt(time.Now().Add(time.Hour)).Build()
}
