package httpx

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gitnudge/portal/internal/domain/account"
	apperrors "github.com/gitnudge/portal/internal/errors"
)

// registerView carries everything the registration form template needs.
type registerView struct {
	Form    account.RegistrationForm
	Errors  map[string]string
	Message string
	Toast   string
	Status  int
}

// RegisterPage renders the registration form pre-filled from the session.
// GET /register.
func (h *UIHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}
	h.renderRegister(w, r, registerView{Form: account.NewRegistrationForm(sess.Email), Status: http.StatusOK})
}

// RegisterSubmit validates the form locally, then registers the user with
// the backend. Only a successful registration navigates away.
// POST /register.
func (h *UIHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := account.RegistrationForm{
		NotificationEmail: r.PostFormValue("notificationEmail"),
		GitName:           r.PostFormValue("gitName"),
		Hour:              r.PostFormValue("hour"),
		Minute:            r.PostFormValue("minute"),
	}
	if errs := h.Validator.ValidateRegistration(&form); len(errs) > 0 {
		h.renderRegister(w, r, registerView{
			Form:   form,
			Errors: errs,
			Toast:  MsgFixErrors,
			Status: http.StatusUnprocessableEntity,
		})
		return
	}

	outcome, err := h.Accounts.Register(r.Context(), DeviceIDFromContext(r.Context()), *sess, form)
	switch {
	case apperrors.IsValidation(err):
		h.renderRegister(w, r, registerView{
			Form:   form,
			Errors: map[string]string{"time": "Choose a valid notification time."},
			Toast:  MsgFixErrors,
			Status: http.StatusUnprocessableEntity,
		})
		return
	case err != nil:
		h.logger().ErrorContext(r.Context(), "registration request failed", "user_id", sess.UserID, "error", err)
		h.renderRegister(w, r, registerView{
			Form:    form,
			Message: MsgRegisterError,
			Toast:   MsgRegisterError,
			Status:  http.StatusBadGateway,
		})
		return
	}

	if !outcome.Registered {
		inline, general := splitFieldErrors(outcome.FieldErrors)
		msg := outcome.Message
		if general != "" {
			msg = general
		}
		toast := msg
		if toast == "" {
			toast = MsgRegisterFailed
		}
		h.renderRegister(w, r, registerView{
			Form:    form,
			Errors:  inline,
			Message: msg,
			Toast:   toast,
			Status:  http.StatusUnprocessableEntity,
		})
		return
	}

	redirect(w, r, "/dashboard")
}

// renderRegister renders the form. htmx submissions swap just the form and
// raise a toast; plain posts get the whole page with v.Status.
func (h *UIHandlers) renderRegister(w http.ResponseWriter, r *http.Request, v registerView) {
	b := h.pageData(r, PageMeta{Title: "Register", PageTitle: "Register", CurrentPage: PageRegister}).
		With("Form", v.Form).
		With("HourOptions", account.HourOptions).
		With("MinuteOptions", account.MinuteOptions).
		WithFieldErrors(v.Errors)
	if v.Message != "" {
		b.WithError(v.Message)
	}
	data := b.Build()

	if IsHTMX(r) && r.Method == http.MethodPost {
		HTMX(w).Toast(v.Toast, ToastError)
		if err := h.T.RenderPartial(w, "register-form", data); err != nil {
			h.logAndRenderTemplateError(w, r, err)
		}
		return
	}
	h.renderPage(w, r, v.Status, data)
}

// registerFormFields are the keys the form renders next to an input.
var registerFormFields = map[string]bool{
	"notificationEmail": true,
	"gitName":           true,
	"hour":              true,
	"minute":            true,
	"time":              true,
}

// splitFieldErrors keeps errors for rendered fields inline and joins the
// rest (general errors and keys like googleId) into one message, so no
// backend reason is lost.
func splitFieldErrors(errs map[string]string) (map[string]string, string) {
	inline := make(map[string]string, len(errs))
	var keys []string
	for k, msg := range errs {
		if registerFormFields[k] {
			inline[k] = msg
			continue
		}
		if strings.TrimSpace(msg) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	general := make([]string, 0, len(keys))
	for _, k := range keys {
		general = append(general, strings.TrimSpace(errs[k]))
	}
	return inline, strings.Join(general, " ")
}
