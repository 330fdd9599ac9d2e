package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

type PlanService struct {
	repo   ports.PlanRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewPlanService(repo ports.PlanRepository, logger zerolog.Logger) *PlanService {
	return &PlanService{repo: repo, logger: logger, now: time.Now}
}

// List returns active plans, or every plan when includeInactive is set.
func (s *PlanService) List(ctx context.Context, includeInactive bool) ([]*domain.SubscriptionPlan, error) {
	return s.repo.List(ctx, !includeInactive)
}

func (s *PlanService) Get(ctx context.Context, id string) (*domain.SubscriptionPlan, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PlanService) Create(ctx context.Context, in ports.CreatePlanInput) (*domain.SubscriptionPlan, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if in.PriceCents < 0 {
		return nil, domain.Invalid("priceCents cannot be negative")
	}
	interval, err := domain.ParseBillingInterval(in.Interval)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	features := in.Features
	if features == nil {
		features = []string{}
	}

	now := s.now().UTC()
	plan, err := s.repo.Create(ctx, &domain.SubscriptionPlan{
		Name:        name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Currency:    currency,
		Interval:    interval,
		Features:    features,
		Active:      in.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("plan_id", plan.ID).Str("name", plan.Name).Msg("subscription plan created")
	return plan, nil
}

func (s *PlanService) Update(ctx context.Context, id string, upd ports.PlanUpdate) (*domain.SubscriptionPlan, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, domain.Invalid("name cannot be empty")
	}
	if upd.PriceCents != nil && *upd.PriceCents < 0 {
		return nil, domain.Invalid("priceCents cannot be negative")
	}
	if upd.Interval != nil {
		if _, err := domain.ParseBillingInterval(string(*upd.Interval)); err != nil {
			return nil, err
		}
	}
	if upd.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*upd.Currency))
		upd.Currency = &c
	}
	return s.repo.Update(ctx, id, upd)
}

func (s *PlanService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("plan_id", id).Msg("subscription plan deleted")
	return nil
}
