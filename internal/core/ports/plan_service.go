package ports

import (
	"context"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

// CreatePlanInput carries a new subscription plan.
type CreatePlanInput struct {
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Interval    string
	Features    []string
	Active      bool
}

// PlanService manages subscription plans.
type PlanService interface {
	List(ctx context.Context, includeInactive bool) ([]*domain.SubscriptionPlan, error)
	Get(ctx context.Context, id string) (*domain.SubscriptionPlan, error)
	Create(ctx context.Context, in CreatePlanInput) (*domain.SubscriptionPlan, error)
	Update(ctx context.Context, id string, upd PlanUpdate) (*domain.SubscriptionPlan, error)
	Delete(ctx context.Context, id string) error
}
