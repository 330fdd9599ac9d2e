package ports

import (
	"context"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

// RegisterInput carries self-registration data.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Role        string
	InviteToken string
	RememberMe  bool
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	User    *domain.User
	Session *domain.Session
	// Remember selects the long-lived cookie.
	Remember bool
}

// AuthService issues, resolves and revokes sessions.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a session token into a principal. Failures wrap
	// domain.ErrUnauthenticated; domain.ErrInvalidSession and
	// domain.ErrSessionExpired additionally mean the cookie must be cleared.
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

// InviteInput describes a client invitation.
type InviteInput struct {
	Email    string
	Username string
	// TherapistID is honoured only when an admin invites on a therapist's behalf.
	TherapistID string
}

// Invitation is a pending client account plus the token that activates it.
type Invitation struct {
	User  *domain.User
	Token string
}

// InvitationService creates pending client accounts.
type InvitationService interface {
	Invite(ctx context.Context, inviter *domain.User, in InviteInput) (*Invitation, error)
}
