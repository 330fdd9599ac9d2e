package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mindtrack/cbt-api/internal/api/middleware"
	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

// stubUserService records the arguments of the last call.
type stubUserService struct {
	filter    ports.UserFilter
	id        string
	arg       string
	profile   ports.ProfileInput
	status    domain.UserStatus
	deleted   string
	createdIn ports.CreateUserInput
}

func (s *stubUserService) List(_ context.Context, f ports.UserFilter) ([]*domain.User, error) {
	s.filter = f
	return []*domain.User{}, nil
}

func (s *stubUserService) Get(_ context.Context, id string) (*domain.User, error) {
	s.id = id
	return &domain.User{ID: id}, nil
}

func (s *stubUserService) Create(_ context.Context, in ports.CreateUserInput) (*domain.User, error) {
	s.createdIn = in
	return &domain.User{ID: "20", Username: in.Username, Role: domain.Role(in.Role), Status: domain.StatusActive}, nil
}

func (s *stubUserService) UpdateProfile(_ context.Context, id string, in ports.ProfileInput) (*domain.User, error) {
	s.id, s.profile = id, in
	return &domain.User{ID: id}, nil
}

func (s *stubUserService) SetStatus(_ context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	s.id, s.status = id, status
	return &domain.User{ID: id, Status: status}, nil
}

func (s *stubUserService) AssignTherapist(_ context.Context, clientID, therapistID string) (*domain.User, error) {
	s.id, s.arg = clientID, therapistID
	return &domain.User{ID: clientID, TherapistID: therapistID}, nil
}

func (s *stubUserService) AssignSubscription(_ context.Context, userID, planID string) (*domain.User, error) {
	s.id, s.arg = userID, planID
	return &domain.User{ID: userID, SubscriptionPlanID: planID}, nil
}

func (s *stubUserService) ListClients(_ context.Context, therapistID string) ([]*domain.User, error) {
	s.id = therapistID
	return []*domain.User{}, nil
}

func (s *stubUserService) SetViewingClient(_ context.Context, ownerID, clientID string) (*domain.User, error) {
	s.id, s.arg = ownerID, clientID
	return &domain.User{ID: ownerID, CurrentViewingClientID: clientID}, nil
}

func (s *stubUserService) Delete(_ context.Context, id string) error {
	s.deleted = id
	return nil
}

func TestUserHandler_ListFilters(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc)

	c, _ := newJSONContext(http.MethodGet, "/api/users?role=client&status=pending&therapistId=3", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	want := ports.UserFilter{Role: domain.RoleClient, Status: domain.StatusPending, TherapistID: "3"}
	if svc.filter != want {
		t.Errorf("expected filter %+v, got %+v", want, svc.filter)
	}
}

func TestUserHandler_ListRejectsUnknownRole(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	c, _ := newJSONContext(http.MethodGet, "/api/users?role=root", "")
	if err := h.List(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUserHandler_Create(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/api/users",
		`{"username":"carol","email":"carol@example.com","password":"long-enough","role":"client","therapistId":"3"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.createdIn.TherapistID != "3" || svc.createdIn.Role != "client" {
		t.Errorf("unexpected create input: %+v", svc.createdIn)
	}
}

func TestUserHandler_SetStatus(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc)

	c, _ := newJSONContext(http.MethodPatch, "/api/users/4/status", `{"status":"active"}`)
	c.SetParamNames(middleware.UserIDParam)
	c.SetParamValues("4")
	if err := h.SetStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if svc.id != "4" || svc.status != domain.StatusActive {
		t.Errorf("unexpected call: id=%q status=%q", svc.id, svc.status)
	}
}

func TestUserHandler_UpdateProfilePassesActor(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc)
	actor := &domain.Principal{User: &domain.User{ID: "10", Role: domain.RoleClient}, Session: activeSession("10")}

	c, rec := newJSONContext(http.MethodPatch, "/api/users/10", `{"password":"new-password"}`)
	c.SetParamNames(middleware.UserIDParam)
	c.SetParamValues("10")
	middleware.SetPrincipal(c, actor)
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.id != "10" || svc.profile.Actor != actor || svc.profile.Password == nil {
		t.Errorf("unexpected call: id=%q profile=%+v", svc.id, svc.profile)
	}
}

func TestUserHandler_UpdateProfileRequiresPrincipal(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	c, _ := newJSONContext(http.MethodPatch, "/api/users/10", `{"username":"carol"}`)
	c.SetParamNames(middleware.UserIDParam)
	c.SetParamValues("10")
	if err := h.UpdateProfile(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestUserHandler_NullClearsReferences(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(*UserHandler) echo.HandlerFunc
	}{
		{"therapist", `{"therapistId":null}`, func(h *UserHandler) echo.HandlerFunc { return h.AssignTherapist }},
		{"subscription", `{}`, func(h *UserHandler) echo.HandlerFunc { return h.AssignSubscription }},
		{"viewing client", `{"clientId":""}`, func(h *UserHandler) echo.HandlerFunc { return h.SetViewingClient }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubUserService{arg: "unchanged"}
			h := NewUserHandler(svc)

			c, _ := newJSONContext(http.MethodPut, "/api/users/10", tt.body)
			c.SetParamNames(middleware.UserIDParam)
			c.SetParamValues("10")
			if err := tt.call(h)(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			if svc.id != "10" || svc.arg != "" {
				t.Errorf("expected clear on user 10, got id=%q arg=%q", svc.id, svc.arg)
			}
		})
	}
}

func TestUserHandler_Delete(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandler(svc)

	c, rec := newJSONContext(http.MethodDelete, "/api/users/10", "")
	c.SetParamNames(middleware.UserIDParam)
	c.SetParamValues("10")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusNoContent || svc.deleted != "10" {
		t.Errorf("expected 204 deleting user 10, got %d %q", rec.Code, svc.deleted)
	}
}
