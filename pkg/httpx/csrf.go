package httpx

import (
	"crypto/subtle"
	"net/http"
)

// CSRFHeader carries the double-submit value.
const CSRFHeader = "X-CSRF-Token"

// RequireCSRF enforces the double-submit cookie pattern on every method
// except GET, HEAD and OPTIONS: the CSRFHeader value must equal the cookie
// named cookieName.
func RequireCSRF(cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if !ValidCSRF(r, cookieName) {
				WriteError(w, http.StatusForbidden, "invalid_csrf", "Invalid CSRF token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidCSRF reports whether the header and cookie are both present and equal.
func ValidCSRF(r *http.Request, cookieName string) bool {
	header := r.Header.Get(CSRFHeader)
	if header == "" {
		return false
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) == 1
}
