package ports

import (
	"context"
)

// Reference fields used to find dependent records during cascades.
const (
	RefEmotionRecord = "emotion_record_id"
	RefThoughtRecord = "thought_record_id"
	RefGoal          = "goal_id"
	RefStrategy      = "strategy_id"
)

// RecordFilter selects records of a single kind.
type RecordFilter struct {
	// UserID restricts results to one owner. Empty matches every owner.
	UserID string
	// IncludeGlobal also matches owner-less library entries.
	IncludeGlobal bool
	// RefField/RefID match records that reference another record.
	RefField string
	RefID    string
}

// RecordRepository is the persistence port for one record type.
type RecordRepository[T any] interface {
	Insert(ctx context.Context, rec *T) error
	// FindByID returns domain.ErrRecordNotFound when no record matches.
	FindByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, filter RecordFilter) ([]*T, error)
	Replace(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter RecordFilter) (int64, error)
}

// RecordPurger removes every record a user owns. Used when a user is deleted.
type RecordPurger interface {
	PurgeOwner(ctx context.Context, userID string) (int64, error)
}
