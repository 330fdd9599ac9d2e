package ports

import (
	"context"
)

// RecordService exposes owner-scoped CRUD for one record type. Callers have
// already passed the access check for ownerID; the service only guarantees
// that the record belongs to ownerID.
type RecordService[T any] interface {
	List(ctx context.Context, ownerID string) ([]*T, error)
	Get(ctx context.Context, ownerID, id string) (*T, error)
	Create(ctx context.Context, ownerID string, rec *T) (*T, error)
	// Update replaces the client-editable fields of an owned record with the
	// value apply fills in. Identity, ownership and managed fields are carried
	// over from the stored record.
	Update(ctx context.Context, ownerID, id string, apply func(*T) error) (*T, error)
	Delete(ctx context.Context, ownerID, id string) error
}
