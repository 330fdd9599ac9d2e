package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
	"github.com/mindtrack/cbt-api/internal/pkg/metrics"
)

const (
	DefaultSessionTTL  = 7 * 24 * time.Hour
	DefaultRememberTTL = 30 * 24 * time.Hour
)

// SessionCache abstracts the in-process token → user cache. Implementations
// must tolerate concurrent use.
type SessionCache interface {
	// Get also returns when the entry stops being valid, never later than
	// the session's own expiry.
	Get(token string) (*domain.User, time.Time, bool)
	Set(token string, user *domain.User, sessionExpiry time.Time)
	Delete(token string)
	InvalidateUser(userID string)
}

// AuthOptions tunes session lifetimes.
type AuthOptions struct {
	SessionTTL  time.Duration
	RememberTTL time.Duration
}

// AuthService implements registration, login and session resolution.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	cache    SessionCache
	invites  *InviteTokens
	audit    ports.AuditSink
	logger   zerolog.Logger

	sessionTTL  time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// NewAuthService wires the auth use cases. cache and audit may be nil.
func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionRepository,
	cache SessionCache,
	invites *InviteTokens,
	audit ports.AuditSink,
	opts AuthOptions,
	logger zerolog.Logger,
) *AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.RememberTTL <= 0 {
		opts.RememberTTL = DefaultRememberTTL
	}
	return &AuthService{
		users:       users,
		sessions:    sessions,
		cache:       cache,
		invites:     invites,
		audit:       audit,
		logger:      logger,
		sessionTTL:  opts.SessionTTL,
		rememberTTL: opts.RememberTTL,
		now:         time.Now,
	}
}

// Register creates an account and opens a session for it. Self-registered
// therapists start pending and get no session until an admin activates them.
// With an invite token the pending client account created by the inviting
// therapist is activated instead.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.Username) == "" || email == "" || in.Password == "" {
		return nil, domain.Invalid("username, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	var user *domain.User
	if in.InviteToken != "" {
		user, err = s.acceptInvite(ctx, in.InviteToken, email, strings.TrimSpace(in.Username), string(hash))
	} else {
		user, err = s.createAccount(ctx, in, email, string(hash))
	}
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "rejected").Inc()
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "ok").Inc()
	s.record(domain.AuditEvent{Type: domain.AuditRegistered, ActorID: user.ID, Email: user.Email})
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Str("status", string(user.Status)).Msg("user registered")

	if user.Status == domain.StatusPending {
		return &ports.AuthResult{User: user}, nil
	}
	return s.openSession(ctx, user, in.RememberMe)
}

func (s *AuthService) createAccount(ctx context.Context, in ports.RegisterInput, email, hash string) (*domain.User, error) {
	role := domain.RoleClient
	if in.Role != "" {
		r, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}
	status := domain.StatusActive
	switch role {
	case domain.RoleAdmin:
		return nil, domain.Forbidden("Admin accounts cannot be self-registered")
	case domain.RoleTherapist:
		status = domain.StatusPending
	case domain.RoleClient:
	}

	now := s.now().UTC()
	return s.users.Create(ctx, &domain.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *AuthService) acceptInvite(ctx context.Context, token, email, username, hash string) (*domain.User, error) {
	if s.invites == nil {
		return nil, domain.Invalid("invitations are not enabled")
	}
	claims, err := s.invites.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Email != email {
		return nil, domain.Invalid("invitation was issued for a different email")
	}

	pending, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Invalid("invitation is no longer valid")
		}
		return nil, fmt.Errorf("register: load invited user: %w", err)
	}
	if pending.Status != domain.StatusPending || pending.Email != email || pending.Role != domain.RoleClient {
		return nil, domain.Invalid("invitation is no longer valid")
	}
	therapist, err := s.users.FindByID(ctx, pending.TherapistID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("register: load inviting therapist: %w", err)
	}
	if err != nil || therapist.Role != domain.RoleTherapist {
		return nil, domain.Invalid("invitation is no longer valid")
	}

	active := domain.StatusActive
	return s.users.Update(ctx, pending.ID, ports.UserUpdate{
		Username:     &username,
		PasswordHash: &hash,
		Status:       &active,
	})
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.loginFailed(email, "unknown_email")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if user.Status == domain.StatusPending {
		s.loginFailed(email, "pending")
		return nil, domain.ErrAccountPending
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		s.loginFailed(email, "bad_password")
		return nil, domain.ErrInvalidCredentials
	}

	res, err := s.openSession(ctx, user, in.RememberMe)
	if err != nil {
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	s.record(domain.AuditEvent{Type: domain.AuditLoginOK, ActorID: user.ID, Email: email})
	return res, nil
}

func (s *AuthService) loginFailed(email, reason string) {
	metrics.AuthAttemptsTotal.WithLabelValues("login", reason).Inc()
	s.record(domain.AuditEvent{Type: domain.AuditLoginFailed, Email: email, Reason: reason})
}

// Logout deletes the session and evicts it from the cache. Unknown tokens
// are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	var actor string
	if s.cache != nil {
		if u, _, ok := s.cache.Get(token); ok {
			actor = u.ID
		}
		s.cache.Delete(token)
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.record(domain.AuditEvent{Type: domain.AuditLogout, ActorID: actor})
	return nil
}

// Authenticate resolves a session token into a principal.
//
//  1. Missing token: ErrAuthRequired.
//  2. Cache hit: principal with a session view bounded by the cache entry,
//     which never outlives the stored session.
//  3. Unknown token: ErrInvalidSession.
//  4. Expired token: the session is deleted, ErrSessionExpired.
//  5. Owner gone: ErrPrincipalNotFound.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("session", "missing").Inc()
		return nil, domain.ErrAuthRequired
	}

	now := s.now()

	if s.cache != nil {
		if user, validUntil, ok := s.cache.Get(token); ok {
			metrics.AuthAttemptsTotal.WithLabelValues("session", "ok").Inc()
			return &domain.Principal{
				User: user,
				Session: &domain.Session{
					ID:        token,
					UserID:    user.ID,
					ExpiresAt: validUntil,
				},
			}, nil
		}
	}

	sess, err := s.sessions.FindByID(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.AuthAttemptsTotal.WithLabelValues("session", "invalid").Inc()
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("authenticate: load session: %w", err)
	}

	if sess.ExpiredAt(now) {
		// The request is rejected either way; a failed delete is retried on
		// the next use of the token.
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.logger.Warn().Err(err).Str("user_id", sess.UserID).Msg("failed to delete expired session")
		}
		metrics.AuthAttemptsTotal.WithLabelValues("session", "expired").Inc()
		return nil, domain.ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.AuthAttemptsTotal.WithLabelValues("session", "user_missing").Inc()
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("authenticate: load user: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(token, user, sess.ExpiresAt)
	}
	metrics.AuthAttemptsTotal.WithLabelValues("session", "ok").Inc()
	return &domain.Principal{User: user, Session: sess}, nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User, remember bool) (*ports.AuthResult, error) {
	token, err := domain.NewSessionToken()
	if err != nil {
		return nil, err
	}

	ttl := s.sessionTTL
	if remember {
		ttl = s.rememberTTL
	}
	now := s.now().UTC()
	sess := &domain.Session{
		ID:        token,
		UserID:    user.ID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(token, user, sess.ExpiresAt)
	}
	return &ports.AuthResult{User: user, Session: sess, Remember: remember}, nil
}

func (s *AuthService) record(ev domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	ev.At = s.now().UTC()
	s.audit.Record(ev)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
