package httpx

import (
	"net/http"

	"github.com/docuchat/docuchat/pkg/jwtx"
	"github.com/docuchat/docuchat/pkg/slogx"
)

// CookieAuthn verifies the access token carried in cookieName and puts its
// claims into the request context. A missing or invalid token is a 401.
func CookieAuthn(v jwtx.Verifier, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "missing access token")
				return
			}

			claims, err := v.Verify(cookie.Value)
			if err != nil {
				slogx.FromContext(ctx).Info("access token rejected", "err", err)
				WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(ctx, claims)))
		})
	}
}
