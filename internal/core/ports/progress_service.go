package ports

import (
	"context"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

// ProgressService covers completion, status and feedback operations on goals,
// actions, journals and thought records.
type ProgressService interface {
	SetGoalStatus(ctx context.Context, ownerID, goalID string, status domain.GoalStatus) (*domain.Goal, error)
	AddMilestone(ctx context.Context, ownerID, goalID, title string) (*domain.Goal, error)
	CompleteMilestone(ctx context.Context, ownerID, goalID, milestoneID string) (*domain.Goal, error)
	AddGoalFeedback(ctx context.Context, author *domain.User, ownerID, goalID, body string) (*domain.Goal, error)
	CompleteAction(ctx context.Context, ownerID, actionID string) (*domain.Action, error)
	AddJournalComment(ctx context.Context, author *domain.User, ownerID, journalID, body string) (*domain.JournalEntry, error)
	AddStrategyUsage(ctx context.Context, ownerID, thoughtID string, usage *domain.StrategyUsage) (*domain.StrategyUsage, error)
	ListStrategyUsages(ctx context.Context, ownerID, thoughtID string) ([]*domain.StrategyUsage, error)
}
