package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)

	signed, err := m.Issue("665f1c2e9b1e8a0012345678")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := m.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != "665f1c2e9b1e8a0012345678" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	signed, err := m.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	m.now = time.Now
	if _, err := m.Parse(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestManager_WrongSecret(t *testing.T) {
	signed, _ := NewManager("secret", time.Hour).Issue("u1")
	if _, err := NewManager("other", time.Hour).Parse(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestManager_RejectsOtherAlgorithms(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := NewManager("secret", time.Hour).Parse(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestManager_MissingSecret(t *testing.T) {
	if _, err := NewManager("", time.Hour).Issue("u1"); err == nil {
		t.Fatalf("expected error without secret")
	}
}
