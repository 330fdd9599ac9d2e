package ports

import (
	"context"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

// PlanUpdate is a partial update of a subscription plan.
type PlanUpdate struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Currency    *string
	Interval    *domain.BillingInterval
	Features    *[]string
	Active      *bool
}

// PlanRepository defines persistence operations for subscription plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.SubscriptionPlan) (*domain.SubscriptionPlan, error)
	// FindByID returns domain.ErrPlanNotFound when no plan matches.
	FindByID(ctx context.Context, id string) (*domain.SubscriptionPlan, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.SubscriptionPlan, error)
	Update(ctx context.Context, id string, upd PlanUpdate) (*domain.SubscriptionPlan, error)
	Delete(ctx context.Context, id string) error
}
