// Package access decides whether a principal may act on another user's data
// under the therapist–client relationship model.
//
// Every decision follows one precedence: admin, then self, then
// therapist-of-client, then deny. Operations differ only in the denial
// reasons they report and in the extra self-target exclusion applied to
// feedback.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/pkg/metrics"
)

// Op is the kind of operation being authorized against a target user.
type Op int

const (
	// OpRead covers reading, updating and deleting a user's data.
	OpRead Op = iota
	// OpCreate covers creating a record on a user's behalf.
	OpCreate
	// OpFeedback covers status changes, completion and comments on a record.
	// Therapists may only do this on their clients' records, never their own.
	OpFeedback
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpCreate:
		return "create"
	case OpFeedback:
		return "feedback"
	default:
		return "unknown"
	}
}

// Denial reasons surfaced to clients.
const (
	ReasonNotYourClient       = "Not your client"
	ReasonAccessDenied        = "Access denied"
	ReasonCreateForClients    = "You can only create resources for your own clients"
	ReasonCreateForSelf       = "You can only create resources for yourself"
	ReasonTherapistSelfAction = "Therapists can only give feedback on client resources"
)

// UserLookup fetches the target user of a therapist check.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Resolver is the access-scope decision procedure.
type Resolver struct {
	users  UserLookup
	logger zerolog.Logger
}

// NewResolver returns a Resolver that looks up target users through users.
func NewResolver(users UserLookup, logger zerolog.Logger) *Resolver {
	return &Resolver{users: users, logger: logger}
}

// Check returns nil when principal may perform op on targetUserID's data.
// Denials are domain.ErrForbidden errors carrying a reason; a failed target
// lookup is returned as an internal error, never as a denial.
func (r *Resolver) Check(ctx context.Context, principal *domain.User, targetUserID string, op Op) error {
	err := r.decide(ctx, principal, targetUserID, op)
	switch {
	case err == nil:
		metrics.AccessDecisionsTotal.WithLabelValues(op.String(), "allow").Inc()
	case errors.Is(err, domain.ErrForbidden):
		metrics.AccessDecisionsTotal.WithLabelValues(op.String(), "deny").Inc()
		r.logger.Debug().
			Str("principal", principal.ID).
			Str("role", string(principal.Role)).
			Str("target", targetUserID).
			Str("op", op.String()).
			Str("reason", err.Error()).
			Msg("access denied")
	}
	return err
}

// CheckUserAccess authorizes reading or changing targetUserID's data.
func (r *Resolver) CheckUserAccess(ctx context.Context, principal *domain.User, targetUserID string) error {
	return r.Check(ctx, principal, targetUserID, OpRead)
}

// CheckResourceCreationPermission authorizes creating a record for targetUserID.
func (r *Resolver) CheckResourceCreationPermission(ctx context.Context, principal *domain.User, targetUserID string) error {
	return r.Check(ctx, principal, targetUserID, OpCreate)
}

func (r *Resolver) decide(ctx context.Context, principal *domain.User, targetUserID string, op Op) error {
	if principal == nil {
		return domain.ErrAuthRequired
	}

	// Admins are checked first so a stale relationship can never deny them.
	if principal.Role.IsAdmin() {
		return nil
	}

	if principal.ID == targetUserID {
		if op == OpFeedback && principal.Role == domain.RoleTherapist {
			return domain.Forbidden(ReasonTherapistSelfAction)
		}
		return nil
	}

	switch principal.Role {
	case domain.RoleTherapist:
		target, err := r.users.FindByID(ctx, targetUserID)
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown targets are indistinguishable from other therapists' clients.
			return deny(op, true)
		}
		if err != nil {
			return fmt.Errorf("access: load target user %s: %w", targetUserID, err)
		}
		if target.IsClientOf(principal.ID) {
			return nil
		}
		return deny(op, true)
	case domain.RoleClient, domain.RoleAdmin:
		return deny(op, false)
	default:
		return deny(op, false)
	}
}

func deny(op Op, therapist bool) error {
	switch op {
	case OpCreate:
		if therapist {
			return domain.Forbidden(ReasonCreateForClients)
		}
		return domain.Forbidden(ReasonCreateForSelf)
	case OpRead, OpFeedback:
		if therapist {
			return domain.Forbidden(ReasonNotYourClient)
		}
		return domain.Forbidden(ReasonAccessDenied)
	default:
		return domain.Forbidden(ReasonAccessDenied)
	}
}
