package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
	err   error
}

func newStubUserRepo(seed ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range seed {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		r.seq++
		copy.ID = fmt.Sprintf("u%d", r.seq)
	}
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, f ports.UserFilter) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.TherapistID != "" && u.TherapistID != f.TherapistID {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.TherapistID != nil {
		u.TherapistID = *upd.TherapistID
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	if upd.CurrentViewingClientID != nil {
		u.CurrentViewingClientID = *upd.CurrentViewingClientID
	}
	if upd.SubscriptionPlanID != nil {
		u.SubscriptionPlanID = *upd.SubscriptionPlanID
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubSessionRepo struct {
	sessions  map[string]*domain.Session
	finds     int
	deleteErr error
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, s *domain.Session) error {
	clone := *s
	r.sessions[s.ID] = &clone
	return nil
}

func (r *stubSessionRepo) FindByID(_ context.Context, id string) (*domain.Session, error) {
	r.finds++
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubSessionRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.sessions, id)
	return nil
}

func (r *stubSessionRepo) DeleteByUser(_ context.Context, userID string, keep ...string) error {
	for id, s := range r.sessions {
		if s.UserID == userID && !slices.Contains(keep, id) {
			delete(r.sessions, id)
		}
	}
	return nil
}

type cachedUser struct {
	user       *domain.User
	validUntil time.Time
}

// mapCache mirrors the production cache bounds: a minute, or the session's
// expiry when that comes first.
type mapCache struct {
	entries map[string]cachedUser
}

func newMapCache() *mapCache { return &mapCache{entries: make(map[string]cachedUser)} }

func (c *mapCache) Get(token string) (*domain.User, time.Time, bool) {
	e, ok := c.entries[token]
	if !ok || !time.Now().Before(e.validUntil) {
		return nil, time.Time{}, false
	}
	return cloneUser(e.user), e.validUntil, true
}

func (c *mapCache) Set(token string, user *domain.User, sessionExpiry time.Time) {
	if user == nil {
		return
	}
	validUntil := time.Now().Add(time.Minute)
	if !sessionExpiry.IsZero() && sessionExpiry.Before(validUntil) {
		validUntil = sessionExpiry
	}
	c.entries[token] = cachedUser{user: cloneUser(user), validUntil: validUntil}
}

func (c *mapCache) Delete(token string) { delete(c.entries, token) }

func (c *mapCache) InvalidateUser(userID string) {
	for tok, e := range c.entries {
		if e.user.ID == userID {
			delete(c.entries, tok)
		}
	}
}

type stubAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *stubAudit) Record(ev domain.AuditEvent) {
	a.mu.Lock()
	a.events = append(a.events, ev)
	a.mu.Unlock()
}

func (a *stubAudit) types() []domain.AuditType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditType, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Type)
	}
	return out
}

type stubRecordRepo[T any, PT domain.RecordPtr[T]] struct {
	items map[string]*T
	seq   int
}

func newStubRecordRepo[T any, PT domain.RecordPtr[T]]() *stubRecordRepo[T, PT] {
	return &stubRecordRepo[T, PT]{items: make(map[string]*T)}
}

func refValue(rec domain.Record, field string) string {
	switch r := rec.(type) {
	case *domain.ThoughtRecord:
		if field == ports.RefEmotionRecord {
			return r.EmotionRecordID
		}
	case *domain.Action:
		if field == ports.RefGoal {
			return r.GoalID
		}
	case *domain.StrategyUsage:
		switch field {
		case ports.RefThoughtRecord:
			return r.ThoughtRecordID
		case ports.RefStrategy:
			return r.StrategyID
		}
	}
	return ""
}

func (r *stubRecordRepo[T, PT]) matches(rec *T, f ports.RecordFilter) bool {
	p := PT(rec)
	owner := p.Meta().UserID
	if f.UserID != "" && owner != f.UserID && !(f.IncludeGlobal && owner == "") {
		return false
	}
	if f.RefField != "" && refValue(p, f.RefField) != f.RefID {
		return false
	}
	return true
}

func (r *stubRecordRepo[T, PT]) Insert(_ context.Context, rec *T) error {
	meta := PT(rec).Meta()
	if meta.ID == "" {
		r.seq++
		meta.ID = fmt.Sprintf("%s-%d", PT(rec).Kind(), r.seq)
	}
	clone := *rec
	r.items[meta.ID] = &clone
	return nil
}

func (r *stubRecordRepo[T, PT]) FindByID(_ context.Context, id string) (*T, error) {
	rec, ok := r.items[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *stubRecordRepo[T, PT]) List(_ context.Context, f ports.RecordFilter) ([]*T, error) {
	var out []*T
	for _, rec := range r.items {
		if r.matches(rec, f) {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubRecordRepo[T, PT]) Replace(_ context.Context, rec *T) error {
	id := PT(rec).Meta().ID
	if _, ok := r.items[id]; !ok {
		return domain.ErrRecordNotFound
	}
	clone := *rec
	r.items[id] = &clone
	return nil
}

func (r *stubRecordRepo[T, PT]) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *stubRecordRepo[T, PT]) DeleteMany(_ context.Context, f ports.RecordFilter) (int64, error) {
	var n int64
	for id, rec := range r.items {
		if r.matches(rec, f) {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *stubRecordRepo[T, PT]) PurgeOwner(_ context.Context, userID string) (int64, error) {
	return r.DeleteMany(context.Background(), ports.RecordFilter{UserID: userID})
}

type recordStubs struct {
	emotions   *stubRecordRepo[domain.EmotionRecord, *domain.EmotionRecord]
	thoughts   *stubRecordRepo[domain.ThoughtRecord, *domain.ThoughtRecord]
	goals      *stubRecordRepo[domain.Goal, *domain.Goal]
	actions    *stubRecordRepo[domain.Action, *domain.Action]
	journals   *stubRecordRepo[domain.JournalEntry, *domain.JournalEntry]
	factors    *stubRecordRepo[domain.ProtectiveFactor, *domain.ProtectiveFactor]
	strategies *stubRecordRepo[domain.CopingStrategy, *domain.CopingStrategy]
	resources  *stubRecordRepo[domain.Resource, *domain.Resource]
	usages     *stubRecordRepo[domain.StrategyUsage, *domain.StrategyUsage]
}

func newTestRecords() (*Records, *recordStubs) {
	st := &recordStubs{
		emotions:   newStubRecordRepo[domain.EmotionRecord](),
		thoughts:   newStubRecordRepo[domain.ThoughtRecord](),
		goals:      newStubRecordRepo[domain.Goal](),
		actions:    newStubRecordRepo[domain.Action](),
		journals:   newStubRecordRepo[domain.JournalEntry](),
		factors:    newStubRecordRepo[domain.ProtectiveFactor](),
		strategies: newStubRecordRepo[domain.CopingStrategy](),
		resources:  newStubRecordRepo[domain.Resource](),
		usages:     newStubRecordRepo[domain.StrategyUsage](),
	}
	records := NewRecords(RecordRepositories{
		Emotions:          st.emotions,
		Thoughts:          st.thoughts,
		Goals:             st.goals,
		Actions:           st.actions,
		Journals:          st.journals,
		ProtectiveFactors: st.factors,
		CopingStrategies:  st.strategies,
		Resources:         st.resources,
		StrategyUsages:    st.usages,
	}, zerolog.Nop())
	return records, st
}

func (st *recordStubs) purgers() []ports.RecordPurger {
	return []ports.RecordPurger{
		st.emotions, st.thoughts, st.goals, st.actions, st.journals,
		st.factors, st.strategies, st.resources, st.usages,
	}
}

type stubPlanRepo struct {
	plans map[string]*domain.SubscriptionPlan
	seq   int
}

func newStubPlanRepo(seed ...*domain.SubscriptionPlan) *stubPlanRepo {
	r := &stubPlanRepo{plans: make(map[string]*domain.SubscriptionPlan)}
	for _, p := range seed {
		clone := *p
		r.plans[p.ID] = &clone
	}
	return r
}

func (r *stubPlanRepo) Create(_ context.Context, p *domain.SubscriptionPlan) (*domain.SubscriptionPlan, error) {
	clone := *p
	r.seq++
	clone.ID = fmt.Sprintf("plan-%d", r.seq)
	r.plans[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubPlanRepo) FindByID(_ context.Context, id string) (*domain.SubscriptionPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPlanRepo) List(_ context.Context, activeOnly bool) ([]*domain.SubscriptionPlan, error) {
	var out []*domain.SubscriptionPlan
	for _, p := range r.plans {
		if activeOnly && !p.Active {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubPlanRepo) Update(_ context.Context, id string, upd ports.PlanUpdate) (*domain.SubscriptionPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Currency != nil {
		p.Currency = *upd.Currency
	}
	if upd.PriceCents != nil {
		p.PriceCents = *upd.PriceCents
	}
	if upd.Active != nil {
		p.Active = *upd.Active
	}
	clone := *p
	return &clone, nil
}

func (r *stubPlanRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.plans[id]; !ok {
		return domain.ErrPlanNotFound
	}
	delete(r.plans, id)
	return nil
}
