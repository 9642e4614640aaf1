package httpx

import (
	"net/http"
)

// Landing renders the public landing page.
// GET /.
func (h *UIHandlers) Landing(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}
	b := h.pageData(r, PageMeta{Title: "GitNudge", PageTitle: "GitNudge", CurrentPage: PageLanding})
	if r.URL.Query().Get("signin") == "failed" {
		b.WithError(MsgSignInFailed)
	}
	h.renderPage(w, r, http.StatusOK, b.Build())
}

// Dashboard renders the signed-in home page with the account actions.
// GET /dashboard.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, PageMeta{Title: "Dashboard", PageTitle: "Home", CurrentPage: PageDashboard}).Build()
	h.renderPage(w, r, http.StatusOK, data)
}

// About renders the about page.
// GET /about.
func (h *UIHandlers) About(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, PageMeta{Title: "About", PageTitle: "About GitNudge", CurrentPage: PageAbout}).Build()
	h.renderPage(w, r, http.StatusOK, data)
}

// Profile renders the signed-in identity.
// GET /profile.
func (h *UIHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	b := h.pageData(r, PageMeta{Title: "Profile", PageTitle: "Profile", CurrentPage: PageProfile})
	if sess := GetSessionFromContext(r.Context()); sess != nil {
		b.With("Session", sess)
	}
	h.renderPage(w, r, http.StatusOK, b.Build())
}
