package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// sessionTokenBytes is the entropy of a session token (256 bits).
const sessionTokenBytes = 32

// Session binds an opaque token to a user until ExpiresAt. Sessions are never
// updated in place; a new login issues a new token.
type Session struct {
	ID        string    `json:"-" bson:"_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expires_at"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// ExpiredAt reports whether the session is no longer valid at t.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.After(t)
}

// NewSessionToken returns a URL-safe random token.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
