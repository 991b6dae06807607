package httpx

import (
	"net/http"

	"github.com/docuchat/docuchat/pkg/jwtx"
)

// RequireClaims lets the request through only when allow accepts the claims
// stored by CookieAuthn. Without claims the caller is unauthenticated (401);
// with claims that allow rejects it is forbidden (403).
func RequireClaims(allow func(jwtx.Claims) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "")
				return
			}
			if !allow(claims) {
				WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
