package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const SessionCookieName = "sessionId"

const (
	defaultCookieTTL         = 7 * 24 * time.Hour
	defaultRememberCookieTTL = 30 * 24 * time.Hour
)

// CookieConfig holds the deployment-specific cookie attributes.
type CookieConfig struct {
	Secure      bool
	SameSite    string // lax, strict or none
	Domain      string
	TTL         time.Duration
	RememberTTL time.Duration
}

// CookiePolicy issues and clears the session cookie. Set and Clear share one
// attribute set; browsers only drop a cookie whose attributes match.
type CookiePolicy struct {
	secure      bool
	sameSite    http.SameSite
	domain      string
	ttl         time.Duration
	rememberTTL time.Duration
}

// NewCookiePolicy validates cfg. SameSite=None forces Secure, since browsers
// reject insecure cross-site cookies.
func NewCookiePolicy(cfg CookieConfig) (*CookiePolicy, error) {
	p := &CookiePolicy{
		secure:      cfg.Secure,
		domain:      cfg.Domain,
		ttl:         cfg.TTL,
		rememberTTL: cfg.RememberTTL,
	}
	if p.ttl <= 0 {
		p.ttl = defaultCookieTTL
	}
	if p.rememberTTL <= 0 {
		p.rememberTTL = defaultRememberCookieTTL
	}

	switch strings.ToLower(cfg.SameSite) {
	case "", "lax":
		p.sameSite = http.SameSiteLaxMode
	case "strict":
		p.sameSite = http.SameSiteStrictMode
	case "none":
		p.sameSite = http.SameSiteNoneMode
		p.secure = true
	default:
		return nil, fmt.Errorf("cookie: unknown SameSite mode %q", cfg.SameSite)
	}
	return p, nil
}

// Token returns the session token sent with the request, or "".
func (p *CookiePolicy) Token(c echo.Context) string {
	ck, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

// Set issues the session cookie. remember selects the long-lived variant.
func (p *CookiePolicy) Set(c echo.Context, token string, remember bool) {
	ttl := p.ttl
	if remember {
		ttl = p.rememberTTL
	}
	ck := p.base()
	ck.Value = token
	ck.MaxAge = int(ttl / time.Second)
	c.SetCookie(ck)
}

// Clear expires the session cookie. Max-Age is omitted.
func (p *CookiePolicy) Clear(c echo.Context) {
	ck := p.base()
	ck.Expires = time.Unix(0, 0)
	c.SetCookie(ck)
}

func (p *CookiePolicy) base() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		Domain:   p.domain,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: p.sameSite,
	}
}
