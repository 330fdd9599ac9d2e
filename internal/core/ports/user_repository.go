package ports

import (
	"context"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

// UserFilter narrows a user listing. Zero values mean "any".
type UserFilter struct {
	Role        domain.Role
	TherapistID string
	Status      domain.UserStatus
}

// UserUpdate is a partial update; nil fields are left untouched. An empty
// string clears TherapistID, CurrentViewingClientID and SubscriptionPlanID.
type UserUpdate struct {
	Username               *string
	Email                  *string
	PasswordHash           *string
	TherapistID            *string
	Status                 *domain.UserStatus
	CurrentViewingClientID *string
	SubscriptionPlanID     *string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts the user and returns it with its assigned ID.
	// Returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound when no user matches.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
