package httpx

import (
	"context"
	"log/slog"
	"net/http"
)

// NavigationGate decides whether a user must finish registration first.
type NavigationGate interface {
	NavigationLocked(ctx context.Context, deviceID, uid string) (bool, error)
	RecordBlockedNavigation(page string)
}

// gateConfig groups the gate's collaborators.
type gateConfig struct {
	Gate   NavigationGate
	Render func(w http.ResponseWriter, r *http.Request)
	Logger *slog.Logger
}

// requireRegistrationComplete blocks page while this browser has a pending
// registration the signed-in user has not finished. Must run after
// RequireAuthBrowser and DeviceScope. Store failures let the request through.
func requireRegistrationComplete(cfg gateConfig, page string) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg.Gate == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSessionFromContext(r.Context())
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			locked, err := cfg.Gate.NavigationLocked(r.Context(), DeviceIDFromContext(r.Context()), sess.UserID)
			if err != nil {
				cfg.Logger.WarnContext(r.Context(), "navigation gate unavailable", "page", page, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !locked {
				next.ServeHTTP(w, r)
				return
			}

			cfg.Gate.RecordBlockedNavigation(page)
			if IsHTMX(r) {
				HTMX(w).Toast(MsgNavigationLocked, ToastInfo).NoContent()
				return
			}
			cfg.Render(w, r)
		})
	}
}
