// Package cache holds the in-process session cache. It only saves a
// persistence round trip per request; clearing it at any time changes latency,
// never an authorization outcome.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/pkg/metrics"
)

const (
	DefaultTTL           = 60 * time.Second
	DefaultSweepInterval = 5 * time.Minute
)

type entry struct {
	user domain.User
	// validUntil is the earlier of the cache deadline and the session's own
	// expiry.
	validUntil time.Time
}

// SessionCache maps session tokens to users for a bounded time. A nil
// *SessionCache behaves as an always-empty cache.
type SessionCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionCache returns an empty cache whose entries live for ttl.
func NewSessionCache(ttl time.Duration, logger zerolog.Logger) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Get returns a copy of the cached user and the instant the entry stops
// being valid. Entries past the TTL or past their session's expiry are
// reported as absent.
func (c *SessionCache) Get(token string) (*domain.User, time.Time, bool) {
	if c == nil {
		return nil, time.Time{}, false
	}
	c.mu.RLock()
	e, ok := c.entries[token]
	c.mu.RUnlock()

	if !ok || c.expired(e) {
		metrics.SessionCacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, time.Time{}, false
	}
	metrics.SessionCacheLookupsTotal.WithLabelValues("hit").Inc()
	u := e.user
	return &u, e.validUntil, true
}

// Set stores a copy of user under token. The entry never outlives
// sessionExpiry; a zero sessionExpiry bounds it by the TTL alone.
func (c *SessionCache) Set(token string, user *domain.User, sessionExpiry time.Time) {
	if c == nil || user == nil {
		return
	}
	validUntil := c.now().Add(c.ttl)
	if !sessionExpiry.IsZero() && sessionExpiry.Before(validUntil) {
		validUntil = sessionExpiry
	}
	c.mu.Lock()
	c.entries[token] = entry{user: *user, validUntil: validUntil}
	c.mu.Unlock()
}

// Delete evicts a single token.
func (c *SessionCache) Delete(token string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, token)
	c.mu.Unlock()
}

// InvalidateUser evicts every token resolved to userID, so role or
// relationship changes are visible on the next request.
func (c *SessionCache) InvalidateUser(userID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	for token, e := range c.entries {
		if e.user.ID == userID {
			delete(c.entries, token)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *SessionCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes expired entries and returns how many were removed.
func (c *SessionCache) Sweep() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	removed := 0
	for token, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, token)
			removed++
		}
	}
	remaining := len(c.entries)
	c.mu.Unlock()

	metrics.SessionCacheEntries.Set(float64(remaining))
	return removed
}

// Start launches the periodic sweeper. It runs until ctx is cancelled or Stop
// is called. Calling Start on a running cache is a no-op.
func (c *SessionCache) Start(ctx context.Context, interval time.Duration) {
	if c == nil || c.done != nil {
		return
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.sweepLoop(ctx, interval)
}

// Stop cancels the sweeper and waits for it to exit.
func (c *SessionCache) Stop() {
	if c == nil || c.done == nil {
		return
	}
	c.cancel()
	<-c.done
}

func (c *SessionCache) sweepLoop(ctx context.Context, interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Debug().Int("removed", n).Msg("session cache swept")
			}
		}
	}
}

func (c *SessionCache) expired(e entry) bool {
	return !c.now().Before(e.validUntil)
}
