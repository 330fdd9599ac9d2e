package access

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mindtrack/cbt-api/internal/core/domain"
)

type stubUsers struct {
	users   map[string]*domain.User
	err     error
	lookups int
}

func (s *stubUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func fixture() (*Resolver, *stubUsers) {
	users := &stubUsers{users: map[string]*domain.User{
		"1":  {ID: "1", Role: domain.RoleAdmin},
		"3":  {ID: "3", Role: domain.RoleTherapist},
		"7":  {ID: "7", Role: domain.RoleTherapist},
		"10": {ID: "10", Role: domain.RoleClient, TherapistID: "3"},
		"11": {ID: "11", Role: domain.RoleClient},
		"99": {ID: "99", Role: domain.RoleClient, TherapistID: "7"},
	}}
	return NewResolver(users, zerolog.Nop()), users
}

func reason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func TestCheckUserAccess_SelfAlwaysAllowed(t *testing.T) {
	r, users := fixture()
	for _, id := range []string{"1", "3", "10"} {
		u, _ := users.FindByID(context.Background(), id)
		if err := r.CheckUserAccess(context.Background(), u, id); err != nil {
			t.Fatalf("self access for %s (%s): %v", id, u.Role, err)
		}
	}
}

func TestCheckUserAccess_AdminBypass(t *testing.T) {
	r, users := fixture()
	admin := &domain.User{ID: "1", Role: domain.RoleAdmin}

	for _, target := range []string{"10", "99", "does-not-exist"} {
		if err := r.CheckUserAccess(context.Background(), admin, target); err != nil {
			t.Fatalf("admin denied for %s: %v", target, err)
		}
	}
	if users.lookups != 0 {
		t.Fatalf("admin decisions must not load the target, got %d lookups", users.lookups)
	}
}

func TestCheckUserAccess_TherapistScoping(t *testing.T) {
	r, _ := fixture()
	th := &domain.User{ID: "3", Role: domain.RoleTherapist}

	if err := r.CheckUserAccess(context.Background(), th, "10"); err != nil {
		t.Fatalf("therapist denied own client: %v", err)
	}

	err := r.CheckUserAccess(context.Background(), th, "99")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if reason(err) != ReasonNotYourClient {
		t.Fatalf("expected %q, got %q", ReasonNotYourClient, reason(err))
	}

	// Unassigned client and another therapist are equally out of scope.
	for _, target := range []string{"11", "7"} {
		if err := r.CheckUserAccess(context.Background(), th, target); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected forbidden for %s, got %v", target, err)
		}
	}
}

func TestCheckUserAccess_UnknownTargetDoesNotLeak(t *testing.T) {
	r, _ := fixture()
	th := &domain.User{ID: "3", Role: domain.RoleTherapist}

	err := r.CheckUserAccess(context.Background(), th, "missing")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("denial must not reveal that the user is missing")
	}
	if reason(err) != ReasonNotYourClient {
		t.Fatalf("expected %q, got %q", ReasonNotYourClient, reason(err))
	}
}

func TestCheckUserAccess_ClientCannotReachOthers(t *testing.T) {
	r, _ := fixture()
	client := &domain.User{ID: "10", Role: domain.RoleClient, TherapistID: "3"}

	for _, target := range []string{"11", "3", "1"} {
		err := r.CheckUserAccess(context.Background(), client, target)
		if !errors.Is(err, domain.ErrForbidden) || reason(err) != ReasonAccessDenied {
			t.Fatalf("target %s: expected %q, got %v", target, ReasonAccessDenied, err)
		}
	}
}

func TestCheckUserAccess_LookupFailureIsNotADenial(t *testing.T) {
	r, users := fixture()
	users.err = errors.New("connection reset")
	th := &domain.User{ID: "3", Role: domain.RoleTherapist}

	err := r.CheckUserAccess(context.Background(), th, "10")
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("lookup failure must not be reported as a denial: %v", err)
	}
}

func TestCheckResourceCreationPermission(t *testing.T) {
	r, _ := fixture()
	ctx := context.Background()

	tests := []struct {
		name      string
		principal *domain.User
		target    string
		want      string
	}{
		{"self client", &domain.User{ID: "10", Role: domain.RoleClient}, "10", ""},
		{"admin for anyone", &domain.User{ID: "1", Role: domain.RoleAdmin}, "99", ""},
		{"therapist for own client", &domain.User{ID: "3", Role: domain.RoleTherapist}, "10", ""},
		{"therapist for other client", &domain.User{ID: "3", Role: domain.RoleTherapist}, "99", ReasonCreateForClients},
		{"client for someone else", &domain.User{ID: "10", Role: domain.RoleClient}, "11", ReasonCreateForSelf},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := r.CheckResourceCreationPermission(ctx, tc.principal, tc.target)
			if reason(err) != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCheck_FeedbackExcludesTherapistSelf(t *testing.T) {
	r, _ := fixture()
	ctx := context.Background()
	th := &domain.User{ID: "5", Role: domain.RoleTherapist}

	err := r.Check(ctx, th, "5", OpFeedback)
	if !errors.Is(err, domain.ErrForbidden) || reason(err) != ReasonTherapistSelfAction {
		t.Fatalf("expected therapist self-feedback denial, got %v", err)
	}

	// The same therapist may still read their own data.
	if err := r.Check(ctx, th, "5", OpRead); err != nil {
		t.Fatalf("self read denied: %v", err)
	}

	// Clients complete their own items; therapists act on their clients'.
	if err := r.Check(ctx, &domain.User{ID: "10", Role: domain.RoleClient}, "10", OpFeedback); err != nil {
		t.Fatalf("client self feedback denied: %v", err)
	}
	if err := r.Check(ctx, &domain.User{ID: "3", Role: domain.RoleTherapist}, "10", OpFeedback); err != nil {
		t.Fatalf("therapist feedback on client denied: %v", err)
	}
}

func TestCheck_NilPrincipal(t *testing.T) {
	r, _ := fixture()
	if err := r.Check(context.Background(), nil, "10", OpRead); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
