package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var sessionTestNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func newTestSessionManager(t *testing.T, clock func() time.Time) *SessionManager {
	t.Helper()
	manager, err := NewSessionManager(SessionManagerConfig{
		SigningSecret: []byte("test-secret"),
		CookieName:    "memehub_session",
		TTL:           time.Hour,
		Clock:         clock,
	})
	if err != nil {
		t.Fatalf("create session manager: %v", err)
	}
	return manager
}

func TestNewSessionManagerValidatesConfig(t *testing.T) {
	if _, err := NewSessionManager(SessionManagerConfig{CookieName: "c"}); !errors.Is(err, ErrMissingSessionSecret) {
		t.Fatalf("expected ErrMissingSessionSecret, got %v", err)
	}
	if _, err := NewSessionManager(SessionManagerConfig{SigningSecret: []byte("s")}); !errors.Is(err, ErrMissingSessionCookie) {
		t.Fatalf("expected ErrMissingSessionCookie, got %v", err)
	}
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	manager := newTestSessionManager(t, func() time.Time { return sessionTestNow })

	token, expiresAt, err := manager.Issue("user-42")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if want := sessionTestNow.Add(time.Hour); !expiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiresAt)
	}

	userID, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("expected user-42, got %q", userID)
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	manager := newTestSessionManager(t, func() time.Time { return sessionTestNow })

	if _, _, err := manager.Issue("   "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	now := sessionTestNow
	manager := newTestSessionManager(t, func() time.Time { return now })

	token, _, err := manager.Issue("user-42")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	now = sessionTestNow.Add(2 * time.Hour)
	if _, err := manager.Validate(token); !errors.Is(err, ErrExpiredSession) {
		t.Fatalf("expected ErrExpiredSession, got %v", err)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	manager := newTestSessionManager(t, func() time.Time { return sessionTestNow })

	token, _, err := manager.Issue("user-42")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a three-part token, got %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA"
	if _, err := manager.Validate(tampered); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}

	other := newTestSessionManager(t, func() time.Time { return sessionTestNow })
	other.signingSecret = []byte("different-secret")
	foreign, _, err := other.Issue("user-42")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := manager.Validate(foreign); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for foreign signature, got %v", err)
	}
}

func TestValidateRequestReadsCookie(t *testing.T) {
	manager := newTestSessionManager(t, func() time.Time { return sessionTestNow })

	token, _, err := manager.Issue("user-42")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	withCookie := httptest.NewRequest("GET", "/api/auth/me", nil)
	withCookie.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: token})
	userID, err := manager.ValidateRequest(withCookie)
	if err != nil {
		t.Fatalf("validate request failed: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("expected user-42, got %q", userID)
	}

	bare := httptest.NewRequest("GET", "/api/auth/me", nil)
	if _, err := manager.ValidateRequest(bare); !errors.Is(err, ErrMissingSessionCookie) {
		t.Fatalf("expected ErrMissingSessionCookie, got %v", err)
	}
}
