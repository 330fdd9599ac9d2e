package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

// RecordService is owner-scoped CRUD over one record type. Callers have
// already authorized access to ownerID; the service guarantees the record
// itself belongs to ownerID and reports anything else as not found.
type RecordService[T any, PT domain.RecordPtr[T]] struct {
	kind   domain.Kind
	repo   ports.RecordRepository[T]
	logger zerolog.Logger
	now    func() time.Time

	// check validates references to other records before a write.
	check func(ctx context.Context, ownerID string, rec PT) error
	// cascade removes dependent records before rec is deleted.
	cascade func(ctx context.Context, ownerID string, rec PT) error
}

// NewRecordService returns a service over repo without reference checks or
// cascades.
func NewRecordService[T any, PT domain.RecordPtr[T]](repo ports.RecordRepository[T], logger zerolog.Logger) *RecordService[T, PT] {
	var zero T
	kind := PT(&zero).Kind()
	return &RecordService[T, PT]{
		kind:   kind,
		repo:   repo,
		logger: logger.With().Str("kind", string(kind)).Logger(),
		now:    time.Now,
	}
}

// Kind reports the record family served.
func (s *RecordService[T, PT]) Kind() domain.Kind { return s.kind }

// List returns ownerID's records; shared kinds also include global entries.
func (s *RecordService[T, PT]) List(ctx context.Context, ownerID string) ([]*T, error) {
	return s.repo.List(ctx, ports.RecordFilter{UserID: ownerID, IncludeGlobal: s.kind.SharesGlobal()})
}

// ListByRef returns ownerID's records that reference refID through field.
func (s *RecordService[T, PT]) ListByRef(ctx context.Context, ownerID, field, refID string) ([]*T, error) {
	return s.repo.List(ctx, ports.RecordFilter{UserID: ownerID, RefField: field, RefID: refID})
}

func (s *RecordService[T, PT]) Get(ctx context.Context, ownerID, id string) (*T, error) {
	return s.load(ctx, ownerID, id, false)
}

// Create stores rec as a new record owned by ownerID. Any identity or
// server-managed values supplied by the caller are discarded.
func (s *RecordService[T, PT]) Create(ctx context.Context, ownerID string, rec *T) (*T, error) {
	p := PT(rec)
	now := s.now().UTC()

	if m, ok := any(p).(domain.Managed); ok {
		var zero T
		m.RestoreManaged(PT(&zero))
	}
	*p.Meta() = domain.RecordMeta{UserID: ownerID, CreatedAt: now, UpdatedAt: now}
	if d, ok := any(p).(domain.Defaulter); ok {
		d.ApplyDefaults(now)
	}

	if s.check != nil {
		if err := s.check(ctx, ownerID, p); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("owner_id", ownerID).Str("id", p.Meta().ID).Msg("record created")
	return rec, nil
}

func (s *RecordService[T, PT]) Update(ctx context.Context, ownerID, id string, apply func(*T) error) (*T, error) {
	prev, err := s.load(ctx, ownerID, id, true)
	if err != nil {
		return nil, err
	}

	next := new(T)
	if err := apply(next); err != nil {
		return nil, err
	}
	p, pp := PT(next), PT(prev)
	*p.Meta() = *pp.Meta()
	p.Meta().UpdatedAt = s.now().UTC()
	if m, ok := any(p).(domain.Managed); ok {
		m.RestoreManaged(pp)
	}
	if d, ok := any(p).(domain.Defaulter); ok {
		d.ApplyDefaults(pp.Meta().CreatedAt)
	}

	if s.check != nil {
		if err := s.check(ctx, ownerID, p); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Replace(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// save persists server-managed changes made by the progress operations.
func (s *RecordService[T, PT]) save(ctx context.Context, rec *T) error {
	PT(rec).Meta().UpdatedAt = s.now().UTC()
	return s.repo.Replace(ctx, rec)
}

func (s *RecordService[T, PT]) Delete(ctx context.Context, ownerID, id string) error {
	rec, err := s.load(ctx, ownerID, id, true)
	if err != nil {
		return err
	}
	if s.cascade != nil {
		if err := s.cascade(ctx, ownerID, PT(rec)); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug().Str("owner_id", ownerID).Str("id", id).Msg("record deleted")
	return nil
}

// deleteByRef removes ownerID's records referencing refID through field,
// running their own cascades first.
func (s *RecordService[T, PT]) deleteByRef(ctx context.Context, ownerID, field, refID string) error {
	filter := ports.RecordFilter{UserID: ownerID, RefField: field, RefID: refID}
	if s.cascade != nil {
		deps, err := s.repo.List(ctx, filter)
		if err != nil {
			return err
		}
		for _, d := range deps {
			if err := s.cascade(ctx, ownerID, PT(d)); err != nil {
				return err
			}
		}
	}
	n, err := s.repo.DeleteMany(ctx, filter)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Debug().Str("owner_id", ownerID).Str(field, refID).Int64("deleted", n).Msg("dependent records deleted")
	}
	return nil
}

// load fetches a record visible to ownerID. Global entries are visible but
// never writable.
func (s *RecordService[T, PT]) load(ctx context.Context, ownerID, id string, write bool) (*T, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}
	owner := PT(rec).Meta().UserID
	switch {
	case owner == ownerID:
		return rec, nil
	case owner == "" && s.kind.SharesGlobal() && !write:
		return rec, nil
	default:
		return nil, domain.ErrRecordNotFound
	}
}
