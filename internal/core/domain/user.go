package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of actor kinds. Switches over Role are exhaustive;
// adding a value means revisiting every predicate below.
type Role string

const (
	RoleClient    Role = "client"
	RoleTherapist Role = "therapist"
	RoleAdmin     Role = "admin"
)

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleClient, RoleTherapist, RoleAdmin:
		return r, nil
	default:
		return "", Invalid(fmt.Sprintf("unknown role %q", s))
	}
}

// IsAdmin reports whether the role bypasses relationship checks.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleClient, RoleTherapist:
		return false
	default:
		return false
	}
}

// CanActAsTherapist reports whether the role passes the therapist gate.
func (r Role) CanActAsTherapist() bool {
	switch r {
	case RoleTherapist, RoleAdmin:
		return true
	case RoleClient:
		return false
	default:
		return false
	}
}

// CanCreatePersonalRecords reports whether the role may write emotions,
// thoughts, goals and actions. Only therapists are excluded.
func (r Role) CanCreatePersonalRecords() bool {
	switch r {
	case RoleClient, RoleAdmin:
		return true
	case RoleTherapist:
		return false
	default:
		return false
	}
}

// UserStatus tracks account activation.
type UserStatus string

const (
	StatusPending UserStatus = "pending"
	StatusActive  UserStatus = "active"
)

// ParseUserStatus converts a wire value into a UserStatus.
func ParseUserStatus(s string) (UserStatus, error) {
	switch st := UserStatus(s); st {
	case StatusPending, StatusActive:
		return st, nil
	default:
		return "", Invalid(fmt.Sprintf("unknown status %q", s))
	}
}

// User models an authenticated actor in the system.
type User struct {
	ID                     string     `json:"id" bson:"_id,omitempty"`
	Username               string     `json:"username" bson:"username"`
	Email                  string     `json:"email" bson:"email"`
	PasswordHash           string     `json:"-" bson:"password_hash"`
	Role                   Role       `json:"role" bson:"role"`
	TherapistID            string     `json:"therapistId,omitempty" bson:"therapist_id,omitempty"`
	Status                 UserStatus `json:"status" bson:"status"`
	CurrentViewingClientID string     `json:"currentViewingClientId,omitempty" bson:"current_viewing_client_id,omitempty"`
	SubscriptionPlanID     string     `json:"subscriptionPlanId,omitempty" bson:"subscription_plan_id,omitempty"`
	CreatedAt              time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt              time.Time  `json:"updatedAt" bson:"updated_at"`
}

// IsClientOf reports whether u is assigned to the given therapist.
func (u *User) IsClientOf(therapistID string) bool {
	return u != nil && therapistID != "" && u.TherapistID == therapistID
}

// Principal is the authenticated actor for a single request.
type Principal struct {
	User    *User
	Session *Session
}
