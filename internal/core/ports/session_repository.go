package ports

import (
	"context"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

// SessionRepository persists session tokens. Implementations exist for
// MongoDB and Redis.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	// FindByID returns domain.ErrSessionNotFound when the token is unknown.
	// Expired sessions are returned as-is; expiry is the caller's decision.
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	// Delete is idempotent: deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteByUser removes every session of userID except those listed in keep.
	DeleteByUser(ctx context.Context, userID string, keep ...string) error
}
