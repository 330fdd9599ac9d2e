package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

func TestProgressService_Milestones(t *testing.T) {
	records, _ := newTestRecords()
	svc := NewProgressService(records, zerolog.Nop())
	ctx := context.Background()

	goal, _ := records.Goals.Create(ctx, "10", &domain.Goal{Title: "Journal daily"})

	if _, err := svc.AddMilestone(ctx, "10", goal.ID, "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank title, got %v", err)
	}
	goal, err := svc.AddMilestone(ctx, "10", goal.ID, "First week")
	if err != nil {
		t.Fatalf("add milestone failed: %v", err)
	}
	if len(goal.Milestones) != 1 || goal.Milestones[0].ID == "" {
		t.Fatalf("unexpected milestones: %+v", goal.Milestones)
	}

	mid := goal.Milestones[0].ID
	goal, err = svc.CompleteMilestone(ctx, "10", goal.ID, mid)
	if err != nil {
		t.Fatalf("complete milestone failed: %v", err)
	}
	m := goal.Milestones[0]
	if !m.Completed || m.CompletedAt == nil {
		t.Fatalf("milestone not completed: %+v", m)
	}
	if goal.Status != domain.GoalInProgress {
		t.Fatalf("expected goal to move to in_progress, got %s", goal.Status)
	}

	first := *m.CompletedAt
	goal, _ = svc.CompleteMilestone(ctx, "10", goal.ID, mid)
	if !goal.Milestones[0].CompletedAt.Equal(first) {
		t.Fatalf("re-completing changed the completion time")
	}

	if _, err := svc.CompleteMilestone(ctx, "10", goal.ID, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProgressService_GoalStatus(t *testing.T) {
	records, _ := newTestRecords()
	svc := NewProgressService(records, zerolog.Nop())
	ctx := context.Background()

	goal, _ := records.Goals.Create(ctx, "10", &domain.Goal{Title: "Meditate"})

	if _, err := svc.SetGoalStatus(ctx, "10", goal.ID, "finished"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid status to be rejected, got %v", err)
	}
	if _, err := svc.SetGoalStatus(ctx, "11", goal.ID, domain.GoalCompleted); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected foreign goal to be not found, got %v", err)
	}
	got, err := svc.SetGoalStatus(ctx, "10", goal.ID, domain.GoalCompleted)
	if err != nil || got.Status != domain.GoalCompleted {
		t.Fatalf("status not set: %v %+v", err, got)
	}
}

func TestProgressService_CompleteAction(t *testing.T) {
	records, _ := newTestRecords()
	svc := NewProgressService(records, zerolog.Nop())
	ctx := context.Background()

	action, _ := records.Actions.Create(ctx, "10", &domain.Action{Title: "Call a friend"})
	got, err := svc.CompleteAction(ctx, "10", action.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !got.Completed || got.CompletedAt == nil {
		t.Fatalf("action not completed: %+v", got)
	}

	// A client update cannot undo completion.
	updated, err := records.Actions.Update(ctx, "10", action.ID, func(a *domain.Action) error {
		a.Title = "Call two friends"
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Completed {
		t.Fatalf("completion lost on update")
	}
}

func TestProgressService_JournalComments(t *testing.T) {
	records, _ := newTestRecords()
	svc := NewProgressService(records, zerolog.Nop())
	ctx := context.Background()
	therapist := &domain.User{ID: "3", Role: domain.RoleTherapist}

	entry, _ := records.Journals.Create(ctx, "10", &domain.JournalEntry{Content: "Rough day"})
	got, err := svc.AddJournalComment(ctx, therapist, "10", entry.ID, "Thanks for sharing")
	if err != nil {
		t.Fatalf("comment failed: %v", err)
	}
	if len(got.Comments) != 1 || got.Comments[0].AuthorRole != domain.RoleTherapist {
		t.Fatalf("unexpected comments: %+v", got.Comments)
	}
	if _, err := svc.AddJournalComment(ctx, therapist, "10", entry.ID, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected empty comment to be rejected, got %v", err)
	}
}

func TestProgressService_StrategyUsages(t *testing.T) {
	records, st := newTestRecords()
	svc := NewProgressService(records, zerolog.Nop())
	ctx := context.Background()

	st.factors.items["pf-global"] = &domain.ProtectiveFactor{
		RecordMeta: domain.RecordMeta{ID: "pf-global"},
		Name:       "Family",
	}
	thought, _ := records.Thoughts.Create(ctx, "10", &domain.ThoughtRecord{Situation: "s", AutomaticThought: "a"})
	foreign, _ := records.CopingStrategies.Create(ctx, "11", &domain.CopingStrategy{Name: "Theirs"})

	if _, err := svc.AddStrategyUsage(ctx, "10", thought.ID, &domain.StrategyUsage{
		StrategyID: foreign.ID, StrategyKind: domain.KindCopingStrategy,
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected another user's strategy to be rejected, got %v", err)
	}

	if _, err := svc.AddStrategyUsage(ctx, "10", thought.ID, &domain.StrategyUsage{
		StrategyID: "pf-global", StrategyKind: domain.KindProtectiveFactor,
	}); err != nil {
		t.Fatalf("global factor usage failed: %v", err)
	}

	usages, err := svc.ListStrategyUsages(ctx, "10", thought.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(usages) != 1 || usages[0].ThoughtRecordID != thought.ID {
		t.Fatalf("unexpected usages: %+v", usages)
	}

	if _, err := svc.ListStrategyUsages(ctx, "11", thought.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected foreign thought to be not found, got %v", err)
	}
}
