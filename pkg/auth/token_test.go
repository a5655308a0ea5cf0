package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/pkg/config"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-please-ignore",
		Issuer:            "industro-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParse(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer(testJWTConfig())
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	userID := uuid.New()
	raw, err := issuer.Mint(userID, enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	claims, err := issuer.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected a token id")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	minter, _ := NewTokenIssuer(testJWTConfig())
	raw, err := minter.Mint(uuid.New(), enums.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	otherCfg := testJWTConfig()
	otherCfg.Secret = "a-different-secret"
	other, _ := NewTokenIssuer(otherCfg)

	if _, err := other.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenIssuer(testJWTConfig())

	past := time.Now().Add(-time.Hour)
	issuer.now = func() time.Time { return past }
	raw, err := issuer.Mint(uuid.New(), enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Parse(raw); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenIssuer(testJWTConfig())
	if _, err := issuer.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewTokenIssuerValidation(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	cfg.Secret = ""
	if _, err := NewTokenIssuer(cfg); err == nil {
		t.Fatal("expected error for empty secret")
	}

	cfg = testJWTConfig()
	cfg.ExpirationMinutes = 0
	if _, err := NewTokenIssuer(cfg); err == nil {
		t.Fatal("expected error for zero expiration")
	}
}
