package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "advisoret", "advisoret", time.Hour, 24*time.Hour)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	a := testAuthenticator()

	access, _, err := a.GenerateTokens(42, "admin")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	tok, err := a.ValidateAccessToken(access)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	if claims["sub"].(float64) != 42 {
		t.Errorf("sub = %v, want 42", claims["sub"])
	}
	if claims["role"] != "admin" {
		t.Errorf("role = %v, want admin", claims["role"])
	}
}

func TestRefreshTokenUsesSeparateSecret(t *testing.T) {
	a := testAuthenticator()

	access, refresh, err := a.GenerateTokens(7, "user")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	if _, err := a.ValidateRefreshToken(refresh); err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
	// An access token must not validate as a refresh token.
	if _, err := a.ValidateRefreshToken(access); err == nil {
		t.Fatal("access token validated against refresh secret")
	}
	if _, err := a.ValidateAccessToken(refresh); err == nil {
		t.Fatal("refresh token validated against access secret")
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	a := testAuthenticator()

	access, _, err := a.GenerateTokens(1, "user")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	tampered := access[:len(access)-2] + "xx"
	if _, err := a.ValidateAccessToken(tampered); err == nil {
		t.Fatal("tampered token validated")
	}
}
