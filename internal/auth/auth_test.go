package auth

import (
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password", 10)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("s3cret-password", hash) {
		t.Fatalf("expected password to match its hash")
	}
	if CheckPassword("wrong", hash) {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)

	token, err := tm.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("Verify subject = %q, want user-123", userID)
	}
}

func TestTokenVerifyFailures(t *testing.T) {
	tm := NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)

	cases := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tm.Verify(tc.token); !errors.Is(err, core.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}

	// Token signed with a different secret must be rejected.
	other := NewTokenManager("ffffffffffffffffffffffffffffffff", time.Hour)
	token, err := other.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tm.Verify(token); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for foreign signature, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	tm := NewTokenManager("0123456789abcdef0123456789abcdef", -time.Minute)
	token, err := tm.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tm.Verify(token); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}
