package httpx

import (
	"net/http"

	"github.com/gitnudge/portal/internal/http/ui/viewmodel"
)

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData starts page data from the shared layout.
func NewTemplateData(layout viewmodel.Layout) *TemplateDataBuilder {
	data := map[string]any{
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"IsAuthenticated": layout.IsAuthenticated,
		"NavLocked":       layout.NavLocked,
		"Nav":             layout.Nav,
		"Errors":          map[string]string{},
	}
	if layout.CSRFToken != "" {
		data["CSRFToken"] = layout.CSRFToken
	}
	if layout.User != nil {
		data["User"] = layout.User
	}
	return &TemplateDataBuilder{data: data}
}

// WithError sets a general error message.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithNotice sets a non-error banner message.
func (b *TemplateDataBuilder) WithNotice(msg string) *TemplateDataBuilder {
	if msg != "" {
		b.data["Notice"] = msg
	}
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}

// navItems lists the header entries. Sign-out is never gated.
func navItems(current string) []viewmodel.NavItem {
	items := []viewmodel.NavItem{
		{Label: "Home", Href: "/dashboard", Page: PageDashboard, Gated: true},
		{Label: "About", Href: "/about", Page: PageAbout, Gated: true},
		{Label: "Profile", Href: "/profile", Page: PageProfile, Gated: true},
		{Label: "Sign out", Href: "/auth/logout", Page: "signout", Post: true},
	}
	for i := range items {
		items[i].Active = items[i].Page == current
	}
	return items
}

// buildLayout assembles chrome metadata from the request context.
func buildLayout(r *http.Request, meta PageMeta, locked bool) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}
	if session := GetSessionFromContext(r.Context()); session != nil {
		layout.IsAuthenticated = true
		layout.NavLocked = locked
		layout.Nav = navItems(meta.CurrentPage)
		layout.User = &viewmodel.User{
			ID:          session.UserID,
			Email:       session.Email,
			DisplayName: session.DisplayName(),
		}
	}
	return layout
}
