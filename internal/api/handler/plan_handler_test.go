package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

type stubPlanService struct {
	listInactive *bool
	created      ports.CreatePlanInput
	updated      ports.PlanUpdate
	err          error
}

func (s *stubPlanService) List(_ context.Context, includeInactive bool) ([]*domain.SubscriptionPlan, error) {
	s.listInactive = &includeInactive
	return []*domain.SubscriptionPlan{{ID: "p1", Name: "Basic", Active: true}}, s.err
}

func (s *stubPlanService) Get(_ context.Context, id string) (*domain.SubscriptionPlan, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.SubscriptionPlan{ID: id}, nil
}

func (s *stubPlanService) Create(_ context.Context, in ports.CreatePlanInput) (*domain.SubscriptionPlan, error) {
	s.created = in
	return &domain.SubscriptionPlan{ID: "p2", Name: in.Name, Active: in.Active}, s.err
}

func (s *stubPlanService) Update(_ context.Context, id string, upd ports.PlanUpdate) (*domain.SubscriptionPlan, error) {
	s.updated = upd
	return &domain.SubscriptionPlan{ID: id}, s.err
}

func (s *stubPlanService) Delete(context.Context, string) error { return s.err }

func TestPlanHandler_ListShowsActiveOnly(t *testing.T) {
	svc := &stubPlanService{}
	h := NewPlanHandler(svc)

	c, rec := newJSONContext(http.MethodGet, "/api/subscription-plans", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.listInactive == nil || *svc.listInactive {
		t.Error("public listing must exclude inactive plans")
	}
}

func TestPlanHandler_CreateDefaultsActive(t *testing.T) {
	svc := &stubPlanService{}
	h := NewPlanHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/api/subscription-plans", `{"name":"Pro","priceCents":1500,"interval":"month"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !svc.created.Active || svc.created.PriceCents != 1500 {
		t.Errorf("unexpected create input: %+v", svc.created)
	}
}

func TestPlanHandler_UpdateParsesInterval(t *testing.T) {
	svc := &stubPlanService{}
	h := NewPlanHandler(svc)

	c, _ := newJSONContext(http.MethodPatch, "/api/subscription-plans/p1", `{"interval":"year","active":false}`)
	c.SetParamNames(planIDParam)
	c.SetParamValues("p1")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if svc.updated.Interval == nil || *svc.updated.Interval != domain.IntervalYear {
		t.Errorf("expected yearly interval, got %v", svc.updated.Interval)
	}
	if svc.updated.Active == nil || *svc.updated.Active {
		t.Errorf("expected active=false, got %v", svc.updated.Active)
	}
	if svc.updated.Name != nil {
		t.Errorf("absent fields must stay nil")
	}
}

func TestPlanHandler_GetNotFound(t *testing.T) {
	h := NewPlanHandler(&stubPlanService{err: domain.ErrPlanNotFound})

	c, _ := newJSONContext(http.MethodGet, "/api/subscription-plans/missing", "")
	c.SetParamNames(planIDParam)
	c.SetParamValues("missing")

	if err := h.Get(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
