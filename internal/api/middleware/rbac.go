package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/pkg/metrics"
)

// Role gate denial reasons.
const (
	ReasonAdminRequired     = "Admin role required"
	ReasonTherapistRequired = "Therapist role required"
	ReasonClientOrAdmin     = "Therapists cannot create personal records for clients"
)

// RequireAdmin admits admins only.
func RequireAdmin() echo.MiddlewareFunc {
	return requireRole("admin", domain.Role.IsAdmin, ReasonAdminRequired)
}

// RequireTherapist admits therapists and admins.
func RequireTherapist() echo.MiddlewareFunc {
	return requireRole("therapist", domain.Role.CanActAsTherapist, ReasonTherapistRequired)
}

// RequireClientOrAdmin rejects therapists. Personal records are written only
// by the person they describe or by an admin.
func RequireClientOrAdmin() echo.MiddlewareFunc {
	return requireRole("client_or_admin", domain.Role.CanCreatePersonalRecords, ReasonClientOrAdmin)
}

// requireRole must run after Authenticate.
func requireRole(gate string, allowed func(domain.Role) bool, reason string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrAuthRequired
			}
			if !allowed(p.User.Role) {
				metrics.RoleGateDenialsTotal.WithLabelValues(gate).Inc()
				return domain.Forbidden(reason)
			}
			return next(c)
		}
	}
}
