package ports

import (
	"context"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

// CreateUserInput is an admin-created account.
type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	Role        string
	TherapistID string
}

// ProfileInput updates self-service profile fields. Role is not editable.
type ProfileInput struct {
	Username *string
	Email    *string
	Password *string
	// Actor is the principal making the change. Email and password may only
	// be changed by the account owner or an admin.
	Actor *domain.Principal
}

// UserService manages accounts and the therapist–client relationship.
type UserService interface {
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*domain.User, error)
	SetStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error)
	AssignTherapist(ctx context.Context, clientID, therapistID string) (*domain.User, error)
	AssignSubscription(ctx context.Context, userID, planID string) (*domain.User, error)
	ListClients(ctx context.Context, therapistID string) ([]*domain.User, error)
	SetViewingClient(ctx context.Context, ownerID, clientID string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
