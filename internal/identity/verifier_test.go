package identity

import (
	"context"
	"testing"
	"time"

	"campus-commerce/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func baseClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":     "https://issuer.example.com",
		"aud":     "campus-commerce",
		"user_id": "u1",
		"email":   "u1@example.com",
		"name":    "User One",
		"picture": "https://cdn.example.com/u1.png",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
		"firebase": map[string]any{
			"sign_in_provider": "google.com",
		},
	}
}

func newTestVerifier(t *testing.T) *ProviderVerifier {
	t.Helper()
	v, err := NewProviderVerifier(config.IdentityConfig{
		Secret:       testSecret,
		Issuer:       "https://issuer.example.com",
		Audience:     "campus-commerce",
		CookieIssuer: "https://session.example.com",
	})
	if err != nil {
		t.Fatalf("NewProviderVerifier: %v", err)
	}
	return v
}

func TestVerifyIDToken(t *testing.T) {
	v := newTestVerifier(t)
	now := time.Now()

	tok := signToken(t, testSecret, baseClaims(now))
	claims, err := v.VerifyIDToken(context.Background(), tok, 0)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UID != "u1" {
		t.Fatalf("uid = %q, want u1", claims.UID)
	}
	if claims.Email != "u1@example.com" {
		t.Fatalf("email = %q", claims.Email)
	}
	if claims.DisplayName != "User One" {
		t.Fatalf("name = %q", claims.DisplayName)
	}
	if claims.SignInProvider != "google.com" {
		t.Fatalf("provider = %q", claims.SignInProvider)
	}
}

func TestVerifyIDTokenRejectsBadSignature(t *testing.T) {
	v := newTestVerifier(t)
	tok := signToken(t, "some-other-secret", baseClaims(time.Now()))
	if _, err := v.VerifyIDToken(context.Background(), tok, 0); err == nil {
		t.Fatal("expected error for wrong signing key")
	}
}

func TestVerifyIDTokenRejectsWrongIssuer(t *testing.T) {
	v := newTestVerifier(t)
	c := baseClaims(time.Now())
	c["iss"] = "https://evil.example.com"
	tok := signToken(t, testSecret, c)
	if _, err := v.VerifyIDToken(context.Background(), tok, 0); err == nil {
		t.Fatal("expected error for wrong issuer")
	}
}

func TestVerifyIDTokenRequiresExpiry(t *testing.T) {
	v := newTestVerifier(t)
	c := baseClaims(time.Now())
	delete(c, "exp")
	tok := signToken(t, testSecret, c)
	if _, err := v.VerifyIDToken(context.Background(), tok, 0); err == nil {
		t.Fatal("expected error for missing exp")
	}
}

func TestVerifyIDTokenExpiredIsNotSkew(t *testing.T) {
	v := newTestVerifier(t)
	now := time.Now()
	c := baseClaims(now.Add(-2 * time.Hour))
	tok := signToken(t, testSecret, c)

	_, err := v.VerifyIDToken(context.Background(), tok, 0)
	if err == nil {
		t.Fatal("expected error for expired token")
	}
	if usedTooEarly(err) {
		t.Fatalf("expired token classified as skew: %v", err)
	}
}

func TestVerifyIDTokenFutureIssuedAt(t *testing.T) {
	v := newTestVerifier(t)
	c := baseClaims(time.Now().Add(10 * time.Second))
	tok := signToken(t, testSecret, c)

	_, err := v.VerifyIDToken(context.Background(), tok, 0)
	if err == nil {
		t.Fatal("expected error for future iat with zero leeway")
	}
	if !usedTooEarly(err) {
		t.Fatalf("future iat not classified as skew: %v", err)
	}

	// The same token passes once leeway covers the skew.
	if _, err := v.VerifyIDToken(context.Background(), tok, 15*time.Second); err != nil {
		t.Fatalf("verify with leeway: %v", err)
	}
}

func TestVerifySessionCookieUsesCookieIssuer(t *testing.T) {
	v := newTestVerifier(t)
	now := time.Now()

	c := baseClaims(now)
	c["iss"] = "https://session.example.com"
	cookie := signToken(t, testSecret, c)

	if _, err := v.VerifySessionCookie(context.Background(), cookie, 0); err != nil {
		t.Fatalf("verify cookie: %v", err)
	}
	// An ID-token issuer must not pass the cookie path.
	idTok := signToken(t, testSecret, baseClaims(now))
	if _, err := v.VerifySessionCookie(context.Background(), idTok, 0); err == nil {
		t.Fatal("expected issuer mismatch for id token on cookie path")
	}
}

func TestVerifyIDTokenFallsBackToSub(t *testing.T) {
	v := newTestVerifier(t)
	c := baseClaims(time.Now())
	delete(c, "user_id")
	c["sub"] = "u2"
	tok := signToken(t, testSecret, c)

	claims, err := v.VerifyIDToken(context.Background(), tok, 0)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UID != "u2" {
		t.Fatalf("uid = %q, want u2", claims.UID)
	}
}
