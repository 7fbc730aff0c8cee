package auth_test

import (
	"testing"
	"time"

	"github.com/shelterhub/shelterhub/internal/app/system/auth"
)

func TestIssueAndVerify(t *testing.T) {
	m, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	token, expiresAt, err := m.Issue("651111111111111111111111")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiresAt %v is not in the future", expiresAt)
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "651111111111111111111111" {
		t.Errorf("userID: got %q", userID)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m, err := auth.NewTokenManager("test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	token, _, err := m.Issue("651111111111111111111111")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(token); err != auth.ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := auth.NewTokenManager("secret-one", time.Hour)
	verifier, _ := auth.NewTokenManager("secret-two", time.Hour)

	token, _, err := issuer.Issue("651111111111111111111111")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); err != auth.ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m, _ := auth.NewTokenManager("test-secret", time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := m.Verify(tok); err != auth.ErrInvalidToken {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestEmptySecretRejected(t *testing.T) {
	if _, err := auth.NewTokenManager("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}
