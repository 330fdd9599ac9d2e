package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mindtrack/cbt-api/internal/core/access"
	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

// UserIDParam is the route parameter naming the target user.
const UserIDParam = "userId"

// AccessChecker decides whether a principal may perform op on a user's data.
type AccessChecker interface {
	Check(ctx context.Context, principal *domain.User, targetUserID string, op access.Op) error
}

// UserAccess authorizes op against the :userId route parameter. Denials are
// sent to audit, which may be nil.
func UserAccess(checker AccessChecker, op access.Op, audit ports.AuditSink) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrAuthRequired
			}

			target := c.Param(UserIDParam)
			if err := checker.Check(c.Request().Context(), p.User, target, op); err != nil {
				if audit != nil && errors.Is(err, domain.ErrForbidden) {
					audit.Record(domain.AuditEvent{
						Type:         domain.AuditAccessDenied,
						ActorID:      p.User.ID,
						TargetUserID: target,
						Reason:       err.Error(),
						Path:         c.Request().Method + " " + c.Path(),
						At:           time.Now().UTC(),
					})
				}
				return err
			}
			return next(c)
		}
	}
}
