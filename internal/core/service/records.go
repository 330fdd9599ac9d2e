package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

type (
	EmotionService          = RecordService[domain.EmotionRecord, *domain.EmotionRecord]
	ThoughtService          = RecordService[domain.ThoughtRecord, *domain.ThoughtRecord]
	GoalService             = RecordService[domain.Goal, *domain.Goal]
	ActionService           = RecordService[domain.Action, *domain.Action]
	JournalService          = RecordService[domain.JournalEntry, *domain.JournalEntry]
	ProtectiveFactorService = RecordService[domain.ProtectiveFactor, *domain.ProtectiveFactor]
	CopingStrategyService   = RecordService[domain.CopingStrategy, *domain.CopingStrategy]
	ResourceService         = RecordService[domain.Resource, *domain.Resource]
	StrategyUsageService    = RecordService[domain.StrategyUsage, *domain.StrategyUsage]
)

// RecordRepositories groups the persistence ports of every record kind.
type RecordRepositories struct {
	Emotions          ports.RecordRepository[domain.EmotionRecord]
	Thoughts          ports.RecordRepository[domain.ThoughtRecord]
	Goals             ports.RecordRepository[domain.Goal]
	Actions           ports.RecordRepository[domain.Action]
	Journals          ports.RecordRepository[domain.JournalEntry]
	ProtectiveFactors ports.RecordRepository[domain.ProtectiveFactor]
	CopingStrategies  ports.RecordRepository[domain.CopingStrategy]
	Resources         ports.RecordRepository[domain.Resource]
	StrategyUsages    ports.RecordRepository[domain.StrategyUsage]
}

// Records holds one service per record kind, wired with the cross-record
// reference checks and delete cascades.
type Records struct {
	Emotions          *EmotionService
	Thoughts          *ThoughtService
	Goals             *GoalService
	Actions           *ActionService
	Journals          *JournalService
	ProtectiveFactors *ProtectiveFactorService
	CopingStrategies  *CopingStrategyService
	Resources         *ResourceService
	StrategyUsages    *StrategyUsageService
}

// NewRecords builds the record services.
//
// Cascades: emotion → linked thoughts → their strategy usages; thought →
// strategy usages; goal → linked actions; coping strategy or protective
// factor → usages of it.
func NewRecords(repos RecordRepositories, logger zerolog.Logger) *Records {
	r := &Records{
		Emotions:          NewRecordService[domain.EmotionRecord](repos.Emotions, logger),
		Thoughts:          NewRecordService[domain.ThoughtRecord](repos.Thoughts, logger),
		Goals:             NewRecordService[domain.Goal](repos.Goals, logger),
		Actions:           NewRecordService[domain.Action](repos.Actions, logger),
		Journals:          NewRecordService[domain.JournalEntry](repos.Journals, logger),
		ProtectiveFactors: NewRecordService[domain.ProtectiveFactor](repos.ProtectiveFactors, logger),
		CopingStrategies:  NewRecordService[domain.CopingStrategy](repos.CopingStrategies, logger),
		Resources:         NewRecordService[domain.Resource](repos.Resources, logger),
		StrategyUsages:    NewRecordService[domain.StrategyUsage](repos.StrategyUsages, logger),
	}

	r.Thoughts.check = func(ctx context.Context, ownerID string, t *domain.ThoughtRecord) error {
		if t.EmotionRecordID == "" {
			return nil
		}
		return mustOwn(ctx, r.Emotions, ownerID, t.EmotionRecordID, "emotionRecordId")
	}
	r.Actions.check = func(ctx context.Context, ownerID string, a *domain.Action) error {
		if a.GoalID == "" {
			return nil
		}
		return mustOwn(ctx, r.Goals, ownerID, a.GoalID, "goalId")
	}
	r.StrategyUsages.check = func(ctx context.Context, ownerID string, u *domain.StrategyUsage) error {
		if u.ThoughtRecordID == "" {
			return domain.Invalid("thoughtRecordId is required")
		}
		if err := mustOwn(ctx, r.Thoughts, ownerID, u.ThoughtRecordID, "thoughtRecordId"); err != nil {
			return err
		}
		return r.strategyVisible(ctx, ownerID, u)
	}

	r.Emotions.cascade = func(ctx context.Context, ownerID string, e *domain.EmotionRecord) error {
		return r.Thoughts.deleteByRef(ctx, ownerID, ports.RefEmotionRecord, e.ID)
	}
	r.Thoughts.cascade = func(ctx context.Context, ownerID string, t *domain.ThoughtRecord) error {
		return r.StrategyUsages.deleteByRef(ctx, ownerID, ports.RefThoughtRecord, t.ID)
	}
	r.Goals.cascade = func(ctx context.Context, ownerID string, g *domain.Goal) error {
		return r.Actions.deleteByRef(ctx, ownerID, ports.RefGoal, g.ID)
	}
	r.CopingStrategies.cascade = func(ctx context.Context, ownerID string, c *domain.CopingStrategy) error {
		return r.StrategyUsages.deleteByRef(ctx, ownerID, ports.RefStrategy, c.ID)
	}
	r.ProtectiveFactors.cascade = func(ctx context.Context, ownerID string, p *domain.ProtectiveFactor) error {
		return r.StrategyUsages.deleteByRef(ctx, ownerID, ports.RefStrategy, p.ID)
	}

	return r
}

func mustOwn[T any, PT domain.RecordPtr[T]](ctx context.Context, svc *RecordService[T, PT], ownerID, id, field string) error {
	_, err := svc.load(ctx, ownerID, id, false)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invalid(field + " does not reference one of the user's records")
	}
	return err
}

func (r *Records) strategyVisible(ctx context.Context, ownerID string, u *domain.StrategyUsage) error {
	var err error
	switch u.StrategyKind {
	case domain.KindCopingStrategy:
		_, err = r.CopingStrategies.load(ctx, ownerID, u.StrategyID, false)
	case domain.KindProtectiveFactor:
		_, err = r.ProtectiveFactors.load(ctx, ownerID, u.StrategyID, false)
	default:
		return domain.Invalid("strategyKind must be coping-strategies or protective-factors")
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invalid("strategyId does not reference an available strategy")
	}
	return err
}
