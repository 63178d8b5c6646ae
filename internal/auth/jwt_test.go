package auth

import (
	"testing"
	"time"
)

func testJWTConfig() *JWTConfig {
	return &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test-clients",
		TTL:      time.Hour,
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateToken(cfg, "user-a", "Alice")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	ident, err := NewVerifier(cfg).Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if ident.IsZero() {
		t.Fatal("expected verified identity, got zero value")
	}
	if ident.UID() != "user-a" {
		t.Errorf("expected uid 'user-a', got %q", ident.UID())
	}
	if ident.DisplayName() != "Alice" {
		t.Errorf("expected display name 'Alice', got %q", ident.DisplayName())
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateToken(cfg, "user-a", "Alice")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	other := testJWTConfig()
	other.Secret = []byte("a-different-secret")
	if _, err := NewVerifier(other).Verify(token); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerify_RejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Issuer = "someone-else"
	token, err := GenerateToken(cfg, "user-a", "Alice")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := NewVerifier(testJWTConfig()).Verify(token); err == nil {
		t.Fatal("expected verification failure with wrong issuer")
	}
}

func TestVerify_RejectsWrongAudience(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Audience = "other-clients"
	token, err := GenerateToken(cfg, "user-a", "Alice")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := NewVerifier(testJWTConfig()).Verify(token); err == nil {
		t.Fatal("expected verification failure with wrong audience")
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.TTL = -time.Minute
	token, err := GenerateToken(cfg, "user-a", "Alice")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := NewVerifier(testJWTConfig()).Verify(token); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}

func TestVerify_RejectsMissingUserID(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateToken(cfg, "", "Nobody")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := NewVerifier(cfg).Verify(token); err == nil {
		t.Fatal("expected verification failure for empty user id")
	}
}
