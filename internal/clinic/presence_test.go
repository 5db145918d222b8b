package clinic_test

import (
	"errors"
	"testing"
	"time"

	"clinic-go/internal/clinic"
	"clinic-go/internal/model"
	"clinic-go/internal/testutil"
)

func newPresenceService(t *testing.T) (*clinic.PresenceService, *testutil.StaticProvider, *testutil.StubClock) {
	t.Helper()
	provider := testutil.NewTestProvider(t)
	clock := testutil.FixedClock()
	svc := clinic.NewPresenceService(provider, clinic.NewNopLogger(), clock)
	return svc, provider, clock
}

// seedUser inserts a user row directly, bypassing the identity service.
func seedUser(t *testing.T, provider *testutil.StaticProvider, id, email string) {
	t.Helper()
	err := provider.Store.CreateUser(&model.User{
		ID:           id,
		Email:        email,
		PasswordHash: "plain:x",
		Role:         "doctor",
		FirstName:    "First",
		LastName:     "Last",
		CreatedAt:    time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seeding user %s: %v", id, err)
	}
}

func TestSetOnline(t *testing.T) {
	t.Run("marks user online", func(t *testing.T) {
		svc, _, _ := newPresenceService(t)

		if err := svc.SetOnline("u1", "session-1"); err != nil {
			t.Fatalf("SetOnline() failed: %v", err)
		}

		ids, err := svc.ListOnline()
		if err != nil {
			t.Fatalf("ListOnline() failed: %v", err)
		}
		if len(ids) != 1 || ids[0] != "u1" {
			t.Errorf("ListOnline() = %v, want [u1]", ids)
		}
	})

	t.Run("repeated call is idempotent", func(t *testing.T) {
		svc, _, _ := newPresenceService(t)

		if err := svc.SetOnline("u1", "session-1"); err != nil {
			t.Fatalf("first SetOnline() failed: %v", err)
		}
		if err := svc.SetOnline("u1", "session-2"); err != nil {
			t.Fatalf("second SetOnline() failed: %v", err)
		}

		ids, err := svc.ListOnline()
		if err != nil {
			t.Fatalf("ListOnline() failed: %v", err)
		}
		if len(ids) != 1 {
			t.Errorf("ListOnline() returned %d entries, want 1: %v", len(ids), ids)
		}
	})

	t.Run("requires user id", func(t *testing.T) {
		svc, _, _ := newPresenceService(t)

		err := svc.SetOnline("", "session-1")
		var verr *clinic.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("SetOnline() error = %v, want ValidationError", err)
		}
	})
}

func TestSetOffline(t *testing.T) {
	t.Run("removes user from online list", func(t *testing.T) {
		svc, _, _ := newPresenceService(t)

		if err := svc.SetOnline("u1", "session-1"); err != nil {
			t.Fatalf("SetOnline() failed: %v", err)
		}
		if err := svc.SetOffline("u1"); err != nil {
			t.Fatalf("SetOffline() failed: %v", err)
		}

		ids, err := svc.ListOnline()
		if err != nil {
			t.Fatalf("ListOnline() failed: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("ListOnline() = %v, want empty", ids)
		}
	})

	t.Run("creates offline row for unknown user", func(t *testing.T) {
		svc, provider, _ := newPresenceService(t)
		seedUser(t, provider, "u1", "u1@clinic.test")

		if err := svc.SetOffline("u1"); err != nil {
			t.Fatalf("SetOffline() failed: %v", err)
		}

		pairs, err := svc.ListWithPresence()
		if err != nil {
			t.Fatalf("ListWithPresence() failed: %v", err)
		}
		if len(pairs) != 1 {
			t.Fatalf("ListWithPresence() returned %d pairs, want 1", len(pairs))
		}
		if pairs[0].Presence.Status != model.StatusOffline {
			t.Errorf("status = %q, want %q", pairs[0].Presence.Status, model.StatusOffline)
		}
	})

	t.Run("clears session id", func(t *testing.T) {
		svc, provider, _ := newPresenceService(t)
		seedUser(t, provider, "u1", "u1@clinic.test")

		if err := svc.SetOnline("u1", "session-1"); err != nil {
			t.Fatalf("SetOnline() failed: %v", err)
		}
		if err := svc.SetOffline("u1"); err != nil {
			t.Fatalf("SetOffline() failed: %v", err)
		}

		pairs, err := svc.ListWithPresence()
		if err != nil {
			t.Fatalf("ListWithPresence() failed: %v", err)
		}
		if pairs[0].Presence.SessionID != "" {
			t.Errorf("session id = %q, want empty after going offline", pairs[0].Presence.SessionID)
		}
	})
}

func TestListWithPresence(t *testing.T) {
	svc, provider, clock := newPresenceService(t)
	seedUser(t, provider, "u1", "u1@clinic.test")
	seedUser(t, provider, "u2", "u2@clinic.test")
	seedUser(t, provider, "u3", "u3@clinic.test")

	if err := svc.SetOnline("u1", "session-1"); err != nil {
		t.Fatalf("SetOnline(u1) failed: %v", err)
	}
	clock.Advance(time.Minute)
	if err := svc.SetOffline("u2"); err != nil {
		t.Fatalf("SetOffline(u2) failed: %v", err)
	}
	// u3 never got a presence row.

	pairs, err := svc.ListWithPresence()
	if err != nil {
		t.Fatalf("ListWithPresence() failed: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("ListWithPresence() returned %d pairs, want 3", len(pairs))
	}

	byID := map[string]*clinic.UserPresence{}
	for _, up := range pairs {
		byID[up.User.ID] = up
		if up.User.PasswordHash != "" {
			t.Errorf("user %s carries password hash, want empty", up.User.ID)
		}
	}

	tests := []struct {
		userID      string
		wantStatus  string
		wantSession string
	}{
		{"u1", model.StatusOnline, "session-1"},
		{"u2", model.StatusOffline, ""},
		{"u3", model.StatusOffline, ""},
	}
	for _, tt := range tests {
		up, ok := byID[tt.userID]
		if !ok {
			t.Errorf("user %s missing from result", tt.userID)
			continue
		}
		if up.Presence.Status != tt.wantStatus {
			t.Errorf("user %s status = %q, want %q", tt.userID, up.Presence.Status, tt.wantStatus)
		}
		if up.Presence.SessionID != tt.wantSession {
			t.Errorf("user %s session = %q, want %q", tt.userID, up.Presence.SessionID, tt.wantSession)
		}
	}
}
