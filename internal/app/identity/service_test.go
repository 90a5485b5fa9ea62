package identity

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Morgan5/digital-planner/internal/app/todo"
	"github.com/Morgan5/digital-planner/internal/platform/auth"
)

func testTokenManager(now *time.Time) auth.Manager {
	m := auth.NewManager("secret", time.Hour)
	m.Now = func() time.Time { return *now }
	return m
}

func newTestService(now *time.Time) *Service {
	svc := NewService(testTokenManager(now))
	svc.Now = func() time.Time { return *now }
	next := 0
	svc.NewID = func() string {
		next++
		return fmt.Sprintf("session-%d", next)
	}
	return svc
}

func TestLogin_AnyNonBlankCredentials(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestService(&now)

	res, err := svc.Login(" alice ", "whatever")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Token == "" || res.User.Username != "alice" || !res.User.IsAuthenticated {
		t.Fatalf("unexpected login result: %+v", res)
	}
	if res.Section != "dashboard" {
		t.Fatalf("expected dashboard section, got %q", res.Section)
	}
	if !res.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %v", res.ExpiresAt)
	}

	session, err := svc.Authenticate(res.Token)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if session != res.Session || session.ID != "session-1" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestLogin_BlankCredentials(t *testing.T) {
	now := time.Now().UTC()
	svc := newTestService(&now)

	for _, tc := range []struct{ user, pass string }{
		{"", "pw"},
		{"alice", ""},
		{"   ", "pw"},
		{"alice", "  "},
	} {
		if _, err := svc.Login(tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Login(%q, %q): expected ErrInvalidCredentials, got %v", tc.user, tc.pass, err)
		}
	}
	if svc.Active() != 0 {
		t.Fatalf("failed logins must not open sessions")
	}
}

func TestLogout_ResetsWorkspace(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestService(&now)

	first, _ := svc.Login("alice", "pw")
	if _, err := first.Session.Workspace.Todo.Add(todo.Draft{Text: "Buy milk"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	svc.Logout(first.Session.ID)
	svc.Logout(first.Session.ID)

	if _, err := svc.Authenticate(first.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}

	second, _ := svc.Login("alice", "pw")
	if got := len(second.Session.Workspace.Todo.List()); got != 0 {
		t.Fatalf("new session should start empty, got %d tasks", got)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestService(&now)
	res, _ := svc.Login("alice", "pw")

	now = now.Add(2 * time.Hour)
	if _, err := svc.Authenticate(res.Token); !errors.Is(err, auth.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestSweep(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestService(&now)
	svc.Login("alice", "pw")
	now = now.Add(30 * time.Minute)
	svc.Login("bob", "pw")

	now = now.Add(45 * time.Minute)
	if dropped := svc.Sweep(); dropped != 1 {
		t.Fatalf("expected 1 expired session, got %d", dropped)
	}
	if svc.Active() != 1 {
		t.Fatalf("expected 1 active session, got %d", svc.Active())
	}
}
