package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/classfeed/classfeed/go-services/internal/config"
	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	return cfg
}

func claimsFor(t *testing.T, cfg *config.Config, p *models.UserProfile, ttl time.Duration) map[string]interface{} {
	t.Helper()
	raw, err := GenerateAccessToken(cfg, p, ttl)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tok, err := NewHSVerifier(cfg.JWT.Secret).Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		t.Fatalf("claims: %v", err)
	}
	return claims
}

func TestGenerateAndVerifyRoundTrip(t *testing.T) {
	cfg := testConfig()
	p := &models.UserProfile{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: models.RoleInstructor}

	claims := claimsFor(t, cfg, p, time.Minute)
	if claims["uid"] != "u1" || claims["email"] != "jane@example.com" || claims["name"] != "Jane" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	if claims["role"] != "instructor" {
		t.Fatalf("role claim = %v, want instructor", claims["role"])
	}
}

func TestRoleClaimOmittedWhenUnresolved(t *testing.T) {
	cfg := testConfig()
	p := &models.UserProfile{ID: "u1", Role: models.RoleUnknown}

	claims := claimsFor(t, cfg, p, time.Minute)
	if _, present := claims["role"]; present {
		t.Fatalf("role claim should be absent for unresolved role: %v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	raw, err := GenerateAccessToken(cfg, &models.UserProfile{ID: "u1"}, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewHSVerifier("other-secret").Verify(context.Background(), raw); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	cfg := testConfig()
	raw, err := GenerateAccessToken(cfg, &models.UserProfile{ID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewHSVerifier(cfg.JWT.Secret).Verify(context.Background(), raw); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	// tokens signed with alg "none" must never verify
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "u1"})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewHSVerifier("test-secret").Verify(context.Background(), raw); err == nil {
		t.Fatal("expected alg=none token to be rejected")
	}
}
