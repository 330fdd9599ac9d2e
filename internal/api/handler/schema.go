package handler

import (
	"github.com/mindtrack/cbt-api/internal/core/domain"
)

// messageResponse is the envelope for errors and plain acknowledgements.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Username    string `json:"username"    validate:"required,min=2,max=64"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8,max=72"`
	Role        string `json:"role"        validate:"omitempty,oneof=client therapist admin"`
	InviteToken string `json:"inviteToken"`
	RememberMe  bool   `json:"rememberMe"`
}

type loginRequest struct {
	Email      string `json:"email"    validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type authResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message,omitempty"`
}

// --- Users ---

type createUserRequest struct {
	Username    string `json:"username"    validate:"required,min=2,max=64"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8,max=72"`
	Role        string `json:"role"        validate:"required,oneof=client therapist admin"`
	TherapistID string `json:"therapistId"`
}

type updateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=2,max=64"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active"`
}

type assignTherapistRequest struct {
	// Empty or null unassigns the client.
	TherapistID *string `json:"therapistId"`
}

type assignSubscriptionRequest struct {
	PlanID *string `json:"planId"`
}

type viewingClientRequest struct {
	// Empty or null clears the selection.
	ClientID *string `json:"clientId"`
}

// --- Invitations ---

type inviteRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Username    string `json:"username"    validate:"omitempty,min=2,max=64"`
	TherapistID string `json:"therapistId"`
}

type inviteResponse struct {
	User        *domain.User `json:"user"`
	InviteToken string       `json:"inviteToken"`
}

// --- Progress ---

type goalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=not_started in_progress completed abandoned"`
}

type milestoneRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type commentRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// --- Subscription plans ---

type createPlanRequest struct {
	Name        string   `json:"name"        validate:"required,max=120"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"priceCents"  validate:"min=0"`
	Currency    string   `json:"currency"    validate:"omitempty,len=3"`
	Interval    string   `json:"interval"    validate:"omitempty,oneof=month year"`
	Features    []string `json:"features"`
	Active      *bool    `json:"active"`
}

type updatePlanRequest struct {
	Name        *string   `json:"name"        validate:"omitempty,max=120"`
	Description *string   `json:"description"`
	PriceCents  *int64    `json:"priceCents"  validate:"omitempty,min=0"`
	Currency    *string   `json:"currency"    validate:"omitempty,len=3"`
	Interval    *string   `json:"interval"    validate:"omitempty,oneof=month year"`
	Features    *[]string `json:"features"`
	Active      *bool     `json:"active"`
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
