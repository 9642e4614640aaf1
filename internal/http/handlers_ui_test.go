package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnudge/portal/internal/domain/account"
	domainauth "github.com/gitnudge/portal/internal/domain/auth"
	apperrors "github.com/gitnudge/portal/internal/errors"
	"github.com/gitnudge/portal/internal/service"
	"github.com/gitnudge/portal/internal/testutil"
)

func formRequest(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func registrationValues() url.Values {
	return url.Values{
		"notificationEmail": {"nudges@example.com"},
		"gitName":           {"ada-l"},
		"hour":              {"21"},
		"minute":            {"30"},
	}
}

func TestUI_Landing(t *testing.T) {
	h := newUIHandlers(t, &stubAccounts{})

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Landing(w, withSession(httptest.NewRequest(http.MethodGet, "/", nil), nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		body := w.Body.String()
		assert.Contains(t, body, `<main id="main"`)
		assert.Contains(t, body, `href="/auth/login"`)
		assert.NotContains(t, body, "Sign out")
	})

	t.Run("failed sign-in banner", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Landing(w, withSession(httptest.NewRequest(http.MethodGet, "/?signin=failed", nil), nil))

		assert.Contains(t, w.Body.String(), MsgSignInFailed)
	})
}

func TestUI_Dashboard_LockedHeader(t *testing.T) {
	sess := testutil.NewSession().Build()
	h := newUIHandlers(t, &stubAccounts{
		lockedFunc: func(context.Context, string, string) (bool, error) { return true, nil },
	})

	w := httptest.NewRecorder()
	h.Dashboard(w, withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), &sess))

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, `aria-disabled="true"`)
	assert.Contains(t, body, `action="/auth/logout"`)
	assert.Contains(t, body, `hx-post="/account/delete"`)
	assert.Contains(t, body, "hx-confirm=")
}

func TestUI_Dashboard_HTMXNavigationSwapsHeader(t *testing.T) {
	sess := testutil.NewSession().Build()
	h := newUIHandlers(t, &stubAccounts{})

	w := httptest.NewRecorder()
	h.About(w, asHTMX(withSession(httptest.NewRequest(http.MethodGet, "/about", nil), &sess)))

	body := w.Body.String()
	assert.Contains(t, body, `hx-swap-oob="true"`)
	assert.NotContains(t, body, "<html")
	assert.NotContains(t, body, `aria-disabled="true"`)
}

func TestUI_Profile(t *testing.T) {
	sess := testutil.NewSession().Build()
	h := newUIHandlers(t, &stubAccounts{})

	w := httptest.NewRecorder()
	h.Profile(w, withSession(httptest.NewRequest(http.MethodGet, "/profile", nil), &sess))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")
	assert.NotContains(t, w.Body.String(), "id-token-1")
}

func TestUI_Gate(t *testing.T) {
	sess := testutil.NewSession().Build()
	h := newUIHandlers(t, &stubAccounts{})

	w := httptest.NewRecorder()
	h.Gate(w, withSession(httptest.NewRequest(http.MethodGet, "/about", nil), &sess))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), MsgNavigationLocked)
	assert.Contains(t, w.Body.String(), `href="/register"`)
}

func TestUI_NotFound(t *testing.T) {
	h := newUIHandlers(t, &stubAccounts{})

	w := httptest.NewRecorder()
	h.NotFound(w, withSession(httptest.NewRequest(http.MethodGet, "/nope", nil), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestUI_RegisterPage_PrefillsEmail(t *testing.T) {
	sess := testutil.NewSession().Build()
	h := newUIHandlers(t, &stubAccounts{})

	w := httptest.NewRecorder()
	h.RegisterPage(w, withSession(httptest.NewRequest(http.MethodGet, "/register", nil), &sess))

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, `value="ada@example.com"`)
	assert.Contains(t, body, `<option value="21" selected>`)
	assert.Contains(t, body, `<option value="30" selected>`)
}

func TestUI_RegisterPage_RequiresSession(t *testing.T) {
	h := newUIHandlers(t, &stubAccounts{})

	w := httptest.NewRecorder()
	h.RegisterPage(w, withSession(httptest.NewRequest(http.MethodGet, "/register", nil), nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login"))
}

func TestUI_RegisterSubmit(t *testing.T) {
	sess := testutil.NewSession().Build()

	t.Run("success navigates to dashboard", func(t *testing.T) {
		var got account.RegistrationForm
		var gotDevice string
		h := newUIHandlers(t, &stubAccounts{registerFunc: func(
			_ context.Context, deviceID string, _ domainauth.Session, form account.RegistrationForm,
		) (service.RegisterOutcome, error) {
			got, gotDevice = form, deviceID
			return service.RegisterOutcome{Registered: true}, nil
		}})

		w := httptest.NewRecorder()
		h.RegisterSubmit(w, withSession(formRequest("/register", registrationValues()), &sess))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))
		assert.Equal(t, "ada-l", got.GitName)
		assert.Equal(t, testDeviceID, gotDevice)
	})

	t.Run("htmx success uses HX-Redirect", func(t *testing.T) {
		h := newUIHandlers(t, &stubAccounts{})

		w := httptest.NewRecorder()
		h.RegisterSubmit(w, asHTMX(withSession(formRequest("/register", registrationValues()), &sess)))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Hx-Redirect"))
	})

	t.Run("local validation never reaches the backend", func(t *testing.T) {
		h := newUIHandlers(t, &stubAccounts{registerFunc: func(
			context.Context, string, domainauth.Session, account.RegistrationForm,
		) (service.RegisterOutcome, error) {
			t.Fatal("invalid forms must not be submitted")
			return service.RegisterOutcome{}, nil
		}})

		form := registrationValues()
		form.Set("gitName", "")
		form.Set("minute", "10")
		w := httptest.NewRecorder()
		h.RegisterSubmit(w, asHTMX(withSession(formRequest("/register", form), &sess)))

		body := w.Body.String()
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, body, "Git name is required.")
		assert.Contains(t, body, "Choose a minute of 00, 15, 30, 45.")
		assert.Contains(t, w.Header().Get("Hx-Trigger"), MsgFixErrors)
		assert.Empty(t, w.Header().Get("Hx-Redirect"))
	})

	t.Run("backend rejection stays on the form", func(t *testing.T) {
		h := newUIHandlers(t, &stubAccounts{registerFunc: func(
			context.Context, string, domainauth.Session, account.RegistrationForm,
		) (service.RegisterOutcome, error) {
			return service.RegisterOutcome{
				Message:     "Git name already taken",
				FieldErrors: map[string]string{"gitName": "Git name already taken"},
			}, nil
		}})

		w := httptest.NewRecorder()
		h.RegisterSubmit(w, withSession(formRequest("/register", registrationValues()), &sess))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Git name already taken")
		assert.Contains(t, w.Body.String(), `value="nudges@example.com"`)
		assert.Empty(t, w.Header().Get("Location"))
	})

	t.Run("backend errors on unknown fields reach the user", func(t *testing.T) {
		h := newUIHandlers(t, &stubAccounts{registerFunc: func(
			context.Context, string, domainauth.Session, account.RegistrationForm,
		) (service.RegisterOutcome, error) {
			return service.RegisterOutcome{
				FieldErrors: map[string]string{
					"googleId": "Already registered",
					"gitName":  "Unknown git user",
				},
			}, nil
		}})

		w := httptest.NewRecorder()
		h.RegisterSubmit(w, withSession(formRequest("/register", registrationValues()), &sess))

		body := w.Body.String()
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, body, "Already registered")
		assert.Contains(t, body, "Unknown git user")
	})

	t.Run("htmx toast carries the backend reason", func(t *testing.T) {
		h := newUIHandlers(t, &stubAccounts{registerFunc: func(
			context.Context, string, domainauth.Session, account.RegistrationForm,
		) (service.RegisterOutcome, error) {
			return service.RegisterOutcome{
				FieldErrors: map[string]string{"googleId": "Already registered"},
			}, nil
		}})

		req := withSession(formRequest("/register", registrationValues()), &sess)
		req.Header.Set("HX-Request", "true")
		w := httptest.NewRecorder()
		h.RegisterSubmit(w, req)

		assert.Contains(t, w.Header().Get("Hx-Trigger"), "Already registered")
		assert.Contains(t, w.Body.String(), "Already registered")
	})

	t.Run("invalid time from the service", func(t *testing.T) {
		h := newUIHandlers(t, &stubAccounts{registerFunc: func(
			context.Context, string, domainauth.Session, account.RegistrationForm,
		) (service.RegisterOutcome, error) {
			return service.RegisterOutcome{}, apperrors.Validation("bad time")
		}})

		w := httptest.NewRecorder()
		h.RegisterSubmit(w, withSession(formRequest("/register", registrationValues()), &sess))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Choose a valid notification time.")
	})

	t.Run("transport failure", func(t *testing.T) {
		h := newUIHandlers(t, &stubAccounts{registerFunc: func(
			context.Context, string, domainauth.Session, account.RegistrationForm,
		) (service.RegisterOutcome, error) {
			return service.RegisterOutcome{}, errors.New("connection refused")
		}})

		w := httptest.NewRecorder()
		h.RegisterSubmit(w, withSession(formRequest("/register", registrationValues()), &sess))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), MsgRegisterError)
	})
}

func TestUI_DeleteAccount(t *testing.T) {
	sess := testutil.NewSession().Build()

	tests := []struct {
		name      string
		confirm   string
		outcome   service.DeleteOutcome
		err       error
		wantToast string
		wantType  string
	}{
		{name: "deleted", confirm: "yes", outcome: service.DeleteOutcome{Deleted: true}, wantToast: MsgAccountDeleted, wantType: ToastSuccess},
		{name: "not confirmed", err: service.ErrNotConfirmed, wantToast: MsgDeleteUnconfirmed, wantType: ToastInfo},
		{name: "backend refused", confirm: "yes", outcome: service.DeleteOutcome{Message: "User not found"}, wantToast: "User not found", wantType: ToastError},
		{name: "backend refused silently", confirm: "yes", wantToast: MsgDeleteFailed, wantType: ToastError},
		{name: "transport failure", confirm: "yes", err: errors.New("timeout"), wantToast: MsgDeleteError, wantType: ToastError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotConfirmed bool
			h := newUIHandlers(t, &stubAccounts{deleteFunc: func(
				_ context.Context, _ domainauth.Session, confirmed bool,
			) (service.DeleteOutcome, error) {
				gotConfirmed = confirmed
				return tt.outcome, tt.err
			}})

			form := url.Values{}
			if tt.confirm != "" {
				form.Set("confirm", tt.confirm)
			}
			w := httptest.NewRecorder()
			h.DeleteAccount(w, asHTMX(withSession(formRequest("/account/delete", form), &sess)))

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.confirm == "yes", gotConfirmed)
			trigger := w.Header().Get("Hx-Trigger")
			assert.Contains(t, trigger, tt.wantToast)
			assert.Contains(t, trigger, `"type":"`+tt.wantType+`"`)
		})
	}
}

func TestUI_DeleteAccount_PlainPostRendersDashboard(t *testing.T) {
	sess := testutil.NewSession().Build()
	h := newUIHandlers(t, &stubAccounts{})

	w := httptest.NewRecorder()
	h.DeleteAccount(w, withSession(formRequest("/account/delete", url.Values{"confirm": {"yes"}}), &sess))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), MsgAccountDeleted)
}
