package httpx

import (
	"errors"
	"net/http"

	"github.com/gitnudge/portal/internal/service"
)

// DeleteAccount asks the backend to delete the signed-in user once the form
// confirms it. The outcome is reported as a toast; the user stays on the page
// and stays signed in.
// POST /account/delete.
func (h *UIHandlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	if sess == nil {
		redirectToLogin(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	confirmed := r.PostFormValue("confirm") == "yes"

	message, toastType := MsgAccountDeleted, ToastSuccess
	outcome, err := h.Accounts.DeleteAccount(r.Context(), *sess, confirmed)
	switch {
	case errors.Is(err, service.ErrNotConfirmed):
		message, toastType = MsgDeleteUnconfirmed, ToastInfo
	case err != nil:
		h.logger().ErrorContext(r.Context(), "delete account request failed", "user_id", sess.UserID, "error", err)
		message, toastType = MsgDeleteError, ToastError
	case !outcome.Deleted:
		message, toastType = MsgDeleteFailed, ToastError
		if outcome.Message != "" {
			message = outcome.Message
		}
	}

	if IsHTMX(r) {
		HTMX(w).Toast(message, toastType).NoContent()
		return
	}

	b := h.pageData(r, PageMeta{Title: "Dashboard", PageTitle: "Home", CurrentPage: PageDashboard})
	if toastType == ToastError {
		b.WithError(message)
	} else {
		b.WithNotice(message)
	}
	h.renderPage(w, r, http.StatusOK, b.Build())
}
