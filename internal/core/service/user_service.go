package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindtrack/cbt-api/internal/core/access"
	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

// UserService manages accounts and the therapist–client relationship. Every
// change evicts the user's cached sessions so the next request sees it.
type UserService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	plans    ports.PlanRepository
	purgers  []ports.RecordPurger
	cache    SessionCache
	audit    ports.AuditSink
	logger   zerolog.Logger
	now      func() time.Time
}

// NewUserService wires the account use cases. purgers remove a deleted
// user's records, one per record collection.
func NewUserService(
	users ports.UserRepository,
	sessions ports.SessionRepository,
	plans ports.PlanRepository,
	purgers []ports.RecordPurger,
	cache SessionCache,
	audit ports.AuditSink,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		plans:    plans,
		purgers:  purgers,
		cache:    cache,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *UserService) List(ctx context.Context, filter ports.UserFilter) ([]*domain.User, error) {
	return s.users.List(ctx, filter)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// Create adds an active account of any role.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.Invalid("username, email and password are required")
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if in.TherapistID != "" {
		if role != domain.RoleClient {
			return nil, domain.Invalid("only clients can be assigned a therapist")
		}
		if _, err := s.loadTherapist(ctx, in.TherapistID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		TherapistID:  in.TherapistID,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user created")
	return user, nil
}

// ReasonCredentialsOwnerOnly rejects credential changes made on someone
// else's account.
const ReasonCredentialsOwnerOnly = "Only the account owner or an admin can change email or password"

// UpdateProfile changes username, email or password. Role is never editable
// through this path. A password change ends every other session of the user.
func (s *UserService) UpdateProfile(ctx context.Context, id string, in ports.ProfileInput) (*domain.User, error) {
	if (in.Email != nil || in.Password != nil) && !ownsAccount(in.Actor, id) {
		return nil, domain.Forbidden(ReasonCredentialsOwnerOnly)
	}

	var upd ports.UserUpdate
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, domain.Invalid("username cannot be empty")
		}
		upd.Username = &username
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return nil, domain.Invalid("email cannot be empty")
		}
		if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing.ID != id {
			return nil, domain.ErrUserExists
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		upd.Email = &email
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, domain.Invalid("password cannot be empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("update profile: hash password: %w", err)
		}
		h := string(hash)
		upd.PasswordHash = &h
	}

	user, err := s.update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if in.Email != nil || in.Password != nil {
		s.recordCredentialChange(in.Actor, id)
	}
	if in.Password != nil {
		if err := s.revokeOtherSessions(ctx, id, in.Actor); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ownsAccount reports whether actor may change the credentials of id.
func ownsAccount(actor *domain.Principal, id string) bool {
	if actor == nil || actor.User == nil {
		return false
	}
	return actor.User.ID == id || actor.User.Role.IsAdmin()
}

// revokeOtherSessions deletes the user's sessions after a password change.
// The session making a self-service change survives.
func (s *UserService) revokeOtherSessions(ctx context.Context, id string, actor *domain.Principal) error {
	var keep []string
	if actor.User.ID == id && actor.Session != nil {
		keep = append(keep, actor.Session.ID)
	}
	if err := s.sessions.DeleteByUser(ctx, id, keep...); err != nil {
		return fmt.Errorf("update profile %s: revoke sessions: %w", id, err)
	}
	if s.cache != nil {
		s.cache.InvalidateUser(id)
	}
	s.logger.Info().Str("user_id", id).Str("actor_id", actor.User.ID).Msg("sessions revoked after password change")
	return nil
}

func (s *UserService) recordCredentialChange(actor *domain.Principal, id string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuditEvent{
		Type:         domain.AuditCredentials,
		ActorID:      actor.User.ID,
		TargetUserID: id,
		At:           s.now().UTC(),
	})
}

// SetStatus activates or suspends an account.
func (s *UserService) SetStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	return s.update(ctx, id, ports.UserUpdate{Status: &status})
}

// AssignTherapist sets or clears the therapist of a client. An empty
// therapistID removes the assignment.
func (s *UserService) AssignTherapist(ctx context.Context, clientID, therapistID string) (*domain.User, error) {
	client, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client.Role != domain.RoleClient {
		return nil, domain.Invalid("only clients can be assigned a therapist")
	}
	if therapistID != "" {
		if _, err := s.loadTherapist(ctx, therapistID); err != nil {
			return nil, err
		}
	}
	user, err := s.update(ctx, clientID, ports.UserUpdate{TherapistID: &therapistID})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("client_id", clientID).Str("therapist_id", therapistID).Msg("therapist assigned")
	return user, nil
}

// AssignSubscription links a user to a plan. An empty planID removes it.
func (s *UserService) AssignSubscription(ctx context.Context, userID, planID string) (*domain.User, error) {
	if planID != "" {
		if _, err := s.plans.FindByID(ctx, planID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Invalid("subscription plan does not exist")
			}
			return nil, err
		}
	}
	return s.update(ctx, userID, ports.UserUpdate{SubscriptionPlanID: &planID})
}

// ListClients returns the clients assigned to therapistID.
func (s *UserService) ListClients(ctx context.Context, therapistID string) ([]*domain.User, error) {
	return s.users.List(ctx, ports.UserFilter{Role: domain.RoleClient, TherapistID: therapistID})
}

// SetViewingClient records which client a therapist is currently working
// with. Admins may pick any client; an empty clientID clears the selection.
func (s *UserService) SetViewingClient(ctx context.Context, ownerID, clientID string) (*domain.User, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !owner.Role.CanActAsTherapist() {
		return nil, domain.Forbidden("Therapist role required")
	}
	if clientID != "" {
		client, err := s.users.FindByID(ctx, clientID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if err != nil || client.Role != domain.RoleClient {
			return nil, domain.Invalid("clientId must reference a client")
		}
		if !owner.Role.IsAdmin() && !client.IsClientOf(owner.ID) {
			return nil, domain.Forbidden(access.ReasonNotYourClient)
		}
	}
	return s.update(ctx, ownerID, ports.UserUpdate{CurrentViewingClientID: &clientID})
}

// Delete removes a user together with everything they own: records in every
// collection and all sessions. Clients of a deleted therapist become
// unassigned.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	var purged int64
	for _, p := range s.purgers {
		n, err := p.PurgeOwner(ctx, id)
		if err != nil {
			return fmt.Errorf("delete user %s: purge records: %w", id, err)
		}
		purged += n
	}

	if err := s.sessions.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: sessions: %w", id, err)
	}

	if user.Role == domain.RoleTherapist {
		clients, err := s.ListClients(ctx, id)
		if err != nil {
			return fmt.Errorf("delete user %s: list clients: %w", id, err)
		}
		unassigned := ""
		for _, c := range clients {
			if _, err := s.update(ctx, c.ID, ports.UserUpdate{TherapistID: &unassigned}); err != nil {
				return fmt.Errorf("delete user %s: unassign client %s: %w", id, c.ID, err)
			}
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateUser(id)
	}
	if s.audit != nil {
		s.audit.Record(domain.AuditEvent{Type: domain.AuditUserDeleted, TargetUserID: id, At: s.now().UTC()})
	}

	s.logger.Info().Str("user_id", id).Int64("records_purged", purged).Msg("user deleted")
	return nil
}

func (s *UserService) update(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	user, err := s.users.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidateUser(id)
	}
	return user, nil
}

func (s *UserService) loadTherapist(ctx context.Context, id string) (*domain.User, error) {
	therapist, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Invalid("therapist does not exist")
		}
		return nil, err
	}
	if therapist.Role != domain.RoleTherapist {
		return nil, domain.Invalid("therapistId must reference a therapist")
	}
	return therapist, nil
}
