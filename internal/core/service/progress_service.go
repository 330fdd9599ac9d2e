package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

// ProgressService updates the server-managed parts of records: goal status,
// milestones, completion and therapist feedback. Authorization of the
// principal against ownerID happens before these calls.
type ProgressService struct {
	records *Records
	logger  zerolog.Logger
	now     func() time.Time
}

func NewProgressService(records *Records, logger zerolog.Logger) *ProgressService {
	return &ProgressService{records: records, logger: logger, now: time.Now}
}

func (s *ProgressService) SetGoalStatus(ctx context.Context, ownerID, goalID string, status domain.GoalStatus) (*domain.Goal, error) {
	if _, err := domain.ParseGoalStatus(string(status)); err != nil {
		return nil, err
	}
	goal, err := s.records.Goals.load(ctx, ownerID, goalID, true)
	if err != nil {
		return nil, err
	}
	goal.Status = status
	if err := s.records.Goals.save(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *ProgressService) AddMilestone(ctx context.Context, ownerID, goalID, title string) (*domain.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.Invalid("title is required")
	}
	goal, err := s.records.Goals.load(ctx, ownerID, goalID, true)
	if err != nil {
		return nil, err
	}
	goal.Milestones = append(goal.Milestones, domain.Milestone{ID: uuid.NewString(), Title: title})
	if err := s.records.Goals.save(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// CompleteMilestone marks a milestone done. Completing an already completed
// milestone keeps its original completion time.
func (s *ProgressService) CompleteMilestone(ctx context.Context, ownerID, goalID, milestoneID string) (*domain.Goal, error) {
	goal, err := s.records.Goals.load(ctx, ownerID, goalID, true)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range goal.Milestones {
		if goal.Milestones[i].ID == milestoneID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.NotFound("Milestone not found")
	}
	m := &goal.Milestones[idx]
	if !m.Completed {
		at := s.now().UTC()
		m.Completed = true
		m.CompletedAt = &at
	}
	if goal.Status == domain.GoalNotStarted {
		goal.Status = domain.GoalInProgress
	}
	if err := s.records.Goals.save(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *ProgressService) AddGoalFeedback(ctx context.Context, author *domain.User, ownerID, goalID, body string) (*domain.Goal, error) {
	c, err := s.comment(author, body)
	if err != nil {
		return nil, err
	}
	goal, err := s.records.Goals.load(ctx, ownerID, goalID, true)
	if err != nil {
		return nil, err
	}
	goal.Feedback = append(goal.Feedback, c)
	if err := s.records.Goals.save(ctx, goal); err != nil {
		return nil, err
	}
	s.logger.Info().Str("goal_id", goalID).Str("author_id", author.ID).Msg("goal feedback added")
	return goal, nil
}

func (s *ProgressService) CompleteAction(ctx context.Context, ownerID, actionID string) (*domain.Action, error) {
	action, err := s.records.Actions.load(ctx, ownerID, actionID, true)
	if err != nil {
		return nil, err
	}
	if !action.Completed {
		at := s.now().UTC()
		action.Completed = true
		action.CompletedAt = &at
	}
	if err := s.records.Actions.save(ctx, action); err != nil {
		return nil, err
	}
	return action, nil
}

func (s *ProgressService) AddJournalComment(ctx context.Context, author *domain.User, ownerID, journalID, body string) (*domain.JournalEntry, error) {
	c, err := s.comment(author, body)
	if err != nil {
		return nil, err
	}
	entry, err := s.records.Journals.load(ctx, ownerID, journalID, true)
	if err != nil {
		return nil, err
	}
	entry.Comments = append(entry.Comments, c)
	if err := s.records.Journals.save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// AddStrategyUsage records that a coping strategy or protective factor was
// applied to a thought record.
func (s *ProgressService) AddStrategyUsage(ctx context.Context, ownerID, thoughtID string, usage *domain.StrategyUsage) (*domain.StrategyUsage, error) {
	usage.ThoughtRecordID = thoughtID
	return s.records.StrategyUsages.Create(ctx, ownerID, usage)
}

func (s *ProgressService) ListStrategyUsages(ctx context.Context, ownerID, thoughtID string) ([]*domain.StrategyUsage, error) {
	if _, err := s.records.Thoughts.load(ctx, ownerID, thoughtID, false); err != nil {
		return nil, err
	}
	return s.records.StrategyUsages.ListByRef(ctx, ownerID, ports.RefThoughtRecord, thoughtID)
}

func (s *ProgressService) comment(author *domain.User, body string) (domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Comment{}, domain.Invalid("body is required")
	}
	if author == nil {
		return domain.Comment{}, domain.ErrAuthRequired
	}
	return domain.Comment{
		ID:         uuid.NewString(),
		AuthorID:   author.ID,
		AuthorRole: author.Role,
		Body:       body,
		CreatedAt:  s.now().UTC(),
	}, nil
}
