package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"

	"github.com/gitnudge/portal/internal/domain/account"
	domainauth "github.com/gitnudge/portal/internal/domain/auth"
	"github.com/gitnudge/portal/internal/service"
)

// AccountServiceInterface is what the UI needs from the account service.
type AccountServiceInterface interface {
	NavigationGate
	VerifyLogin(ctx context.Context, deviceID string, sess domainauth.Session) (service.Destination, error)
	Register(
		ctx context.Context,
		deviceID string,
		sess domainauth.Session,
		form account.RegistrationForm,
	) (service.RegisterOutcome, error)
	DeleteAccount(ctx context.Context, sess domainauth.Session, confirmed bool) (service.DeleteOutcome, error)
}

var _ AccountServiceInterface = (*service.AccountService)(nil)

// RegistrationValidator checks a registration form before it is submitted.
type RegistrationValidator interface {
	ValidateRegistration(f *account.RegistrationForm) map[string]string
}

// UIHandlers serves browser-facing pages.
type UIHandlers struct {
	T         *TemplateRenderer
	Accounts  AccountServiceInterface
	Validator RegistrationValidator
	IsDev     bool
	Logger    *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// navLocked reports the gate state for the header. Failures render unlocked;
// the gate middleware still guards the pages themselves.
func (h *UIHandlers) navLocked(r *http.Request) bool {
	sess := GetSessionFromContext(r.Context())
	if sess == nil || h.Accounts == nil {
		return false
	}
	locked, err := h.Accounts.NavigationLocked(r.Context(), DeviceIDFromContext(r.Context()), sess.UserID)
	if err != nil {
		h.logger().WarnContext(r.Context(), "read navigation flags failed", "error", err)
		return false
	}
	return locked
}

// pageData builds the base template data for a page.
func (h *UIHandlers) pageData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return NewTemplateData(buildLayout(r, meta, h.navLocked(r)))
}

// renderPage renders a full page, or for htmx navigation the page section
// plus an out-of-band header refresh.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	if IsHTMX(r) {
		if err := h.T.RenderPartial(w, "page-partial", data); err != nil {
			h.logAndRenderTemplateError(w, r, err)
		}
		return
	}
	if err := h.T.RenderFull(w, status, data); err != nil {
		h.logAndRenderTemplateError(w, r, err)
	}
}

// logAndRenderTemplateError logs template errors and shows details in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().ErrorContext(r.Context(), "template rendering failed",
		"error", err,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<pre class="template-error">` + html.EscapeString(err.Error()) + `</pre>`))
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// NotFound renders the 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, PageMeta{Title: "Not found", PageTitle: "Page not found", CurrentPage: PageNotFound}).Build()
	if err := h.T.RenderError(w, http.StatusNotFound, data); err != nil {
		http.NotFound(w, r)
	}
}

// Gate renders the registration-required page in place of a gated page.
func (h *UIHandlers) Gate(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, PageMeta{
		Title:       "Finish registration",
		PageTitle:   "Finish registration",
		CurrentPage: PageGate,
	}).WithNotice(MsgNavigationLocked).Build()
	h.renderPage(w, r, http.StatusForbidden, data)
}
