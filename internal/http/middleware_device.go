package httpx

import (
	"net/http"

	"github.com/google/uuid"
)

// deviceCookieMaxAge is the longest lifetime browsers honour (400 days).
const deviceCookieMaxAge = 400 * 24 * 60 * 60

// DeviceScope assigns each browser a stable device_id cookie. The id scopes
// the registration flags, the way browser-local storage would.
func DeviceScope(cookieDomain string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := cookieValue(r, DeviceCookieName)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     DeviceCookieName,
					Value:    id,
					Path:     "/",
					Domain:   cookieDomain,
					HttpOnly: true,
					Secure:   requestIsSecure(r),
					SameSite: http.SameSiteLaxMode,
					MaxAge:   deviceCookieMaxAge,
				})
			}
			next.ServeHTTP(w, r.WithContext(SetDeviceIDInContext(r.Context(), id)))
		})
	}
}
