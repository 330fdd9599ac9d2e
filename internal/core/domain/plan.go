package domain

import (
	"fmt"
	"time"
)

// BillingInterval is how often a plan renews.
type BillingInterval string

const (
	IntervalMonth BillingInterval = "month"
	IntervalYear  BillingInterval = "year"
)

// DefaultCurrency applies when a plan is created without one.
const DefaultCurrency = "USD"

// ParseBillingInterval converts a wire value into a BillingInterval. Empty
// means monthly.
func ParseBillingInterval(s string) (BillingInterval, error) {
	switch i := BillingInterval(s); i {
	case "":
		return IntervalMonth, nil
	case IntervalMonth, IntervalYear:
		return i, nil
	default:
		return "", Invalid(fmt.Sprintf("unknown billing interval %q", s))
	}
}

// SubscriptionPlan is a purchasable tier. Billing itself is handled elsewhere.
type SubscriptionPlan struct {
	ID          string          `json:"id" bson:"_id,omitempty"`
	Name        string          `json:"name" bson:"name"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
	PriceCents  int64           `json:"priceCents" bson:"price_cents"`
	Currency    string          `json:"currency" bson:"currency"`
	Interval    BillingInterval `json:"interval" bson:"interval"`
	Features    []string        `json:"features" bson:"features"`
	Active      bool            `json:"active" bson:"active"`
	CreatedAt   time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updated_at"`
}
