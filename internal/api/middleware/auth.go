package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

const principalKey = "principal"

// Authenticator resolves a session token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

// Authenticate resolves the session cookie and attaches the typed principal
// to the echo context. Unknown and expired tokens also clear the cookie so
// the client stops sending it.
func Authenticate(auth Authenticator, cookies *CookiePolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookies.Token(c)
			if token == "" {
				return domain.ErrAuthRequired
			}

			principal, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidSession) || errors.Is(err, domain.ErrSessionExpired) {
					cookies.Clear(c)
				}
				return err
			}

			SetPrincipal(c, principal)
			return next(c)
		}
	}
}

// SetPrincipal attaches p to the request context.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal attached by Authenticate.
func PrincipalFrom(c echo.Context) (*domain.Principal, bool) {
	p, ok := c.Get(principalKey).(*domain.Principal)
	if !ok || p == nil || p.User == nil {
		return nil, false
	}
	return p, true
}
