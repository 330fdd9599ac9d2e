package domain

import "time"

// AuditType classifies security-relevant events.
type AuditType string

const (
	AuditRegistered   AuditType = "registered"
	AuditLoginOK      AuditType = "login_succeeded"
	AuditLoginFailed  AuditType = "login_failed"
	AuditLogout       AuditType = "logout"
	AuditAccessDenied AuditType = "access_denied"
	AuditUserDeleted  AuditType = "user_deleted"
	AuditCredentials  AuditType = "credentials_changed"
)

// AuditEvent is an append-only record of an authentication or authorization
// outcome.
type AuditEvent struct {
	Type         AuditType `json:"type" bson:"type"`
	ActorID      string    `json:"actorId,omitempty" bson:"actor_id,omitempty"`
	TargetUserID string    `json:"targetUserId,omitempty" bson:"target_user_id,omitempty"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	Reason       string    `json:"reason,omitempty" bson:"reason,omitempty"`
	Path         string    `json:"path,omitempty" bson:"path,omitempty"`
	At           time.Time `json:"at" bson:"at"`
}

// ShardKey picks the field used to keep one actor's events ordered.
func (e AuditEvent) ShardKey() string {
	if e.ActorID != "" {
		return e.ActorID
	}
	return e.Email
}
