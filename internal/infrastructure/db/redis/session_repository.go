package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

// sessionGrace keeps an expired session readable for a while so a returning
// client is told its session expired rather than that it is unknown.
const sessionGrace = 24 * time.Hour

// SessionRepository stores sessions as JSON values.
// Key format: session:<token>; user index: user_sessions:<user_id>
type SessionRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewSessionRepository creates a SessionRepository wrapping the given Redis client.
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client, now: time.Now}
}

type redisSession struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	payload, err := json.Marshal(redisSession{UserID: s.UserID, ExpiresAt: s.ExpiresAt, CreatedAt: s.CreatedAt})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	ttl := s.ExpiresAt.Sub(r.now()) + sessionGrace
	if ttl <= 0 {
		ttl = sessionGrace
	}

	// The user index must live as long as its longest session: NX sets a TTL
	// on a fresh set, GT only ever extends an existing one.
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(s.ID), payload, ttl)
	pipe.SAdd(ctx, userKey(s.UserID), s.ID)
	pipe.ExpireNX(ctx, userKey(s.UserID), ttl)
	pipe.ExpireGT(ctx, userKey(s.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Session{ID: id, UserID: rs.UserID, ExpiresAt: rs.ExpiresAt, CreatedAt: rs.CreatedAt}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	s, err := r.FindByID(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, userKey(s.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string, keep ...string) error {
	ids, err := r.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	var doomed []string
	for _, id := range ids {
		if !slices.Contains(keep, id) {
			doomed = append(doomed, id)
		}
	}
	if len(doomed) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, id := range doomed {
		pipe.Del(ctx, sessionKey(id))
	}
	if len(doomed) == len(ids) {
		pipe.Del(ctx, userKey(userID))
	} else {
		members := make([]any, len(doomed))
		for i, id := range doomed {
			members[i] = id
		}
		pipe.SRem(ctx, userKey(userID), members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return "session:" + id
}

func userKey(userID string) string {
	return "user_sessions:" + userID
}
