package http

import (
	"net/http"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/pkg/httpx"
	"github.com/docuchat/docuchat/pkg/jwtx"
)

// requireRole admits callers holding one of roles in the tenant named by the
// {tenantId} path value. A session bound to another tenant is forbidden.
func requireRole(roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.PathValue("tenantId")
			httpx.RequireClaims(func(c jwtx.Claims) bool {
				if tenantID != "" && c.TenantID != tenantID {
					return false
				}
				role, ok := domain.ParseRole(c.Role)
				return ok && domain.HasCapability(role, roles...)
			})(next).ServeHTTP(w, r)
		})
	}
}

// identityFrom rebuilds the caller's identity from the verified claims.
func identityFrom(c jwtx.Claims) domain.Identity {
	role, _ := domain.ParseRole(c.Role)
	return domain.Identity{UserID: c.Subject, TenantID: c.TenantID, Role: role}
}

func requestMeta(r *http.Request) domain.RequestMeta {
	return domain.RequestMeta{IP: httpx.ClientIP(r), UserAgent: r.UserAgent()}
}
