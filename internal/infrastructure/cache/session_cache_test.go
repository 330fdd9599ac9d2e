package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*SessionCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewSessionCache(ttl, zerolog.Nop())
	c.now = clock.Now
	return c, clock
}

func TestSessionCache_SetGet(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("tok", &domain.User{ID: "10", Role: domain.RoleClient}, time.Time{})

	u, _, ok := c.Get("tok")
	if !ok {
		t.Fatalf("expected hit")
	}
	if u.ID != "10" {
		t.Fatalf("unexpected user: %+v", u)
	}

	// Callers get a copy; mutating it must not affect the cache.
	u.Role = domain.RoleAdmin
	again, _, _ := c.Get("tok")
	if again.Role != domain.RoleClient {
		t.Fatalf("cache entry was mutated through returned pointer")
	}
}

func TestSessionCache_LazyExpiry(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("tok", &domain.User{ID: "10"}, time.Time{})

	clock.Advance(59 * time.Second)
	if _, _, ok := c.Get("tok"); !ok {
		t.Fatalf("expected hit before TTL")
	}

	clock.Advance(time.Second)
	if _, _, ok := c.Get("tok"); ok {
		t.Fatalf("expected miss at TTL")
	}
}

func TestSessionCache_EntryNeverOutlivesSession(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	sessionExpiry := clock.Now().Add(10 * time.Second)
	c.Set("tok", &domain.User{ID: "10"}, sessionExpiry)

	_, validUntil, ok := c.Get("tok")
	if !ok {
		t.Fatalf("expected hit before session expiry")
	}
	if !validUntil.Equal(sessionExpiry) {
		t.Fatalf("expected entry bounded by session expiry %v, got %v", sessionExpiry, validUntil)
	}

	clock.Advance(10 * time.Second)
	if _, _, ok := c.Get("tok"); ok {
		t.Fatalf("expected miss once the session expired")
	}
	if n := c.Sweep(); n != 1 {
		t.Fatalf("expected expired session entry to be swept, got %d", n)
	}
}

func TestSessionCache_LaterSessionExpiryUsesTTL(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("tok", &domain.User{ID: "10"}, clock.Now().Add(time.Hour))

	_, validUntil, ok := c.Get("tok")
	if !ok || !validUntil.Equal(clock.Now().Add(time.Minute)) {
		t.Fatalf("expected entry bounded by the TTL, got ok=%v until=%v", ok, validUntil)
	}
}

func TestSessionCache_DeleteAndInvalidateUser(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("a", &domain.User{ID: "10"}, time.Time{})
	c.Set("b", &domain.User{ID: "10"}, time.Time{})
	c.Set("c", &domain.User{ID: "11"}, time.Time{})

	c.Delete("a")
	if _, _, ok := c.Get("a"); ok {
		t.Fatalf("expected a to be deleted")
	}

	c.InvalidateUser("10")
	if _, _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be invalidated")
	}
	if _, _, ok := c.Get("c"); !ok {
		t.Fatalf("expected c to survive")
	}
}

func TestSessionCache_Sweep(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("old", &domain.User{ID: "1"}, time.Time{})
	clock.Advance(2 * time.Minute)
	c.Set("new", &domain.User{ID: "2"}, time.Time{})

	if n := c.Sweep(); n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", c.Len())
	}
}

func TestSessionCache_StartStop(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("old", &domain.User{ID: "1"}, time.Time{})
	clock.Advance(2 * time.Minute)

	c.Start(context.Background(), 5*time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()

	if c.Len() != 0 {
		t.Fatalf("sweeper did not remove expired entry")
	}
}

func TestSessionCache_NilIsEmpty(t *testing.T) {
	var c *SessionCache
	c.Set("tok", &domain.User{ID: "1"}, time.Time{})
	if _, _, ok := c.Get("tok"); ok {
		t.Fatalf("nil cache must never hit")
	}
	c.Delete("tok")
	c.InvalidateUser("1")
	c.Start(context.Background(), time.Second)
	c.Stop()
}

func TestSessionCache_ConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok := string(rune('a' + i))
			for j := 0; j < 100; j++ {
				c.Set(tok, &domain.User{ID: tok}, time.Time{})
				c.Get(tok)
				c.Delete(tok)
				c.Sweep()
			}
		}(i)
	}
	wg.Wait()
}
