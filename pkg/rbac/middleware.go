package rbac

import (
	"errors"
	"log/slog"
	"net/http"
)

// Require returns middleware that lets a request through only when the
// subject in its context satisfies req. Missing subject yields 401,
// a denied one 403.
func (p *Policy) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := SubjectFromContext(r.Context())

			if err := p.Evaluate(s, req); err != nil {
				if errors.Is(err, ErrNoSubject) {
					http.Error(w, "authentication required", http.StatusUnauthorized)
					return
				}

				p.logger.InfoContext(r.Context(), "access denied",
					slog.String("role", s.SubjectRole()),
					slog.Any("required_roles", req.Roles),
					slog.Any("required_permissions", req.Permissions),
					slog.String("reason", err.Error()),
				)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles allows subjects whose role is one of roles.
func (p *Policy) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return p.Require(Requirement{Roles: roles})
}

// RequirePermissions allows subjects holding at least one of perms.
func (p *Policy) RequirePermissions(perms ...string) func(http.Handler) http.Handler {
	return p.Require(Requirement{Permissions: perms})
}
