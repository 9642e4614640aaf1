package viewmodel

// User represents the signed-in user exposed to templates.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// NavItem is one header navigation entry.
type NavItem struct {
	Label  string
	Href   string
	Page   string
	Active bool
	// Gated entries render disabled while registration is pending.
	Gated bool
	// Post entries submit a form instead of following a link.
	Post bool
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	NavLocked       bool
	Nav             []NavItem
	User            *User
}
