package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

type memAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	err    error
}

func (r *memAuditRepo) Insert(_ context.Context, e *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *memAuditRepo) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditEvent(nil), r.events...)
}

func TestDispatcher_WritesEventsInOrderPerActor(t *testing.T) {
	repo := &memAuditRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 50; i++ {
		d.Record(domain.AuditEvent{Type: domain.AuditLoginOK, ActorID: "u1", Path: fmt.Sprint(i)})
		d.Record(domain.AuditEvent{Type: domain.AuditLoginFailed, Email: "x@example.com"})
	}
	d.Stop()

	events := repo.snapshot()
	if len(events) != 100 {
		t.Fatalf("expected 100 events written, got %d", len(events))
	}

	next := 0
	for _, e := range events {
		if e.ActorID != "u1" {
			continue
		}
		if e.Path != fmt.Sprint(next) {
			t.Fatalf("events for u1 out of order: got %s, want %d", e.Path, next)
		}
		next++
	}
	if next != 50 {
		t.Errorf("expected 50 events for u1, got %d", next)
	}
}

func TestDispatcher_DropsWhenBufferFull(t *testing.T) {
	repo := &memAuditRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	// Workers are not running yet, so the buffer fills up.
	for i := 0; i < channelBuffer+10; i++ {
		d.Record(domain.AuditEvent{Type: domain.AuditLogout, ActorID: "u1"})
	}

	d.Start(context.Background())
	d.Stop()

	if got := len(repo.snapshot()); got != channelBuffer {
		t.Errorf("expected %d events written, got %d", channelBuffer, got)
	}
}

func TestDispatcher_WriteFailureDoesNotStopWorker(t *testing.T) {
	repo := &memAuditRepo{err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	d.Record(domain.AuditEvent{Type: domain.AuditLogout, ActorID: "u1"})
	d.Record(domain.AuditEvent{Type: domain.AuditLogout, ActorID: "u1"})
	d.Stop()

	if got := len(repo.snapshot()); got != 0 {
		t.Errorf("expected no events stored, got %d", got)
	}
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &memAuditRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Errorf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &memAuditRepo{}, zerolog.Nop())
	first := d.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("user-42"); got != first {
			t.Fatalf("shard index changed: %d != %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Errorf("shard index out of range: %d", first)
	}
}
