package httpx

// Page identifiers used in templates and navigation.
const (
	PageLanding   = "landing"
	PageDashboard = "dashboard"
	PageAbout     = "about"
	PageProfile   = "profile"
	PageRegister  = "register"
	PageGate      = "gate"
	PageNotFound  = "not-found"
)

// Cookie names.
const (
	SessionCookieName = "session_id"
	DeviceCookieName  = "device_id"
	stateCookieName   = "oauth_state"
	nonceCookieName   = "oauth_nonce"
)

// Toast types understood by the client script.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// User-facing messages.
const (
	MsgNavigationLocked  = "Complete registration to unlock these features."
	MsgSignInFailed      = "Sign-in could not be completed. Please try again."
	MsgFixErrors         = "Please fix the errors below."
	MsgRegisterFailed    = "Registration failed. Please check the form and try again."
	MsgRegisterError     = "An error occurred while registering. Please try again."
	MsgAccountDeleted    = "Your account has been deleted."
	MsgDeleteFailed      = "Failed to delete the account."
	MsgDeleteError       = "An error occurred while deleting the account."
	MsgDeleteUnconfirmed = "Account deletion was not confirmed."
	MsgTooManyRequests   = "Too many requests. Please wait a moment and try again."
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageLanding:   "landing-content",
	PageDashboard: "dashboard-content",
	PageAbout:     "about-content",
	PageProfile:   "profile-content",
	PageRegister:  "register-content",
	PageGate:      "gate-content",
	PageNotFound:  "not-found-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to landing-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "landing-content"
}

// TemplatePathFromTest locates the templates from this package's tests.
const TemplatePathFromTest = "../../frontend/templates"
