package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

const DefaultInviteTTL = 7 * 24 * time.Hour

// InviteClaims is the payload of an invitation token. Subject is the pending
// user's ID.
type InviteClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// InviteTokens signs and verifies HS256 invitation tokens.
type InviteTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewInviteTokens returns a signer using secret. A zero ttl uses DefaultInviteTTL.
func NewInviteTokens(secret string, ttl time.Duration) *InviteTokens {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	return &InviteTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token that activates user.
func (t *InviteTokens) Issue(user *domain.User) (string, error) {
	now := t.now()
	claims := InviteClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign invitation: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims.
func (t *InviteTokens) Parse(token string) (*InviteClaims, error) {
	claims := &InviteClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.Invalid("invitation has expired")
		}
		return nil, domain.Invalid("invalid invitation token")
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, domain.Invalid("invalid invitation token")
	}
	return claims, nil
}

// InvitationService creates pending client accounts on behalf of therapists.
type InvitationService struct {
	users  ports.UserRepository
	tokens *InviteTokens
	logger zerolog.Logger
	now    func() time.Time
}

// NewInvitationService wires the invitation use case.
func NewInvitationService(users ports.UserRepository, tokens *InviteTokens, logger zerolog.Logger) *InvitationService {
	return &InvitationService{users: users, tokens: tokens, logger: logger, now: time.Now}
}

// Invite creates a pending client assigned to the inviting therapist. Admins
// must name the therapist the client is assigned to.
func (s *InvitationService) Invite(ctx context.Context, inviter *domain.User, in ports.InviteInput) (*ports.Invitation, error) {
	if inviter == nil {
		return nil, domain.ErrAuthRequired
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, domain.Invalid("email is required")
	}

	var therapistID string
	switch inviter.Role {
	case domain.RoleTherapist:
		therapistID = inviter.ID
	case domain.RoleAdmin:
		if in.TherapistID == "" {
			return nil, domain.Invalid("therapistId is required")
		}
		therapist, err := s.users.FindByID(ctx, in.TherapistID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Invalid("therapist does not exist")
			}
			return nil, fmt.Errorf("invite: load therapist: %w", err)
		}
		if therapist.Role != domain.RoleTherapist {
			return nil, domain.Invalid("therapistId must reference a therapist")
		}
		therapistID = therapist.ID
	default:
		return nil, domain.Forbidden("Therapist role required")
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	now := s.now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Username:    username,
		Email:       email,
		Role:        domain.RoleClient,
		TherapistID: therapistID,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("therapist_id", therapistID).Msg("client invited")
	return &ports.Invitation{User: user, Token: token}, nil
}
