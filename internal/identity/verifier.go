package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"campus-commerce/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier is the identity-provider verification primitive. Implementations
// must honor ctx cancellation and apply leeway to time-validity checks only;
// signature, issuer, and audience checks are never relaxed.
type Verifier interface {
	VerifyIDToken(ctx context.Context, token string, leeway time.Duration) (VerifiedClaims, error)
	VerifySessionCookie(ctx context.Context, cookie string, leeway time.Duration) (VerifiedClaims, error)
}

// ProviderVerifier verifies provider-minted JWTs (ID tokens and session
// cookies share a signing key; session cookies carry their own issuer).
type ProviderVerifier struct {
	secret       []byte
	issuer       string
	audience     string
	cookieIssuer string
}

func NewProviderVerifier(cfg config.IdentityConfig) (*ProviderVerifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("IDENTITY_SECRET is required")
	}
	return &ProviderVerifier{
		secret:       []byte(cfg.Secret),
		issuer:       cfg.Issuer,
		audience:     cfg.Audience,
		cookieIssuer: cfg.CookieIssuer,
	}, nil
}

func (v *ProviderVerifier) VerifyIDToken(ctx context.Context, token string, leeway time.Duration) (VerifiedClaims, error) {
	return v.verify(ctx, token, v.issuer, leeway)
}

func (v *ProviderVerifier) VerifySessionCookie(ctx context.Context, cookie string, leeway time.Duration) (VerifiedClaims, error) {
	iss := v.cookieIssuer
	if iss == "" {
		iss = v.issuer
	}
	return v.verify(ctx, cookie, iss, leeway)
}

func (v *ProviderVerifier) verify(ctx context.Context, tokenString, issuer string, leeway time.Duration) (VerifiedClaims, error) {
	if err := ctx.Err(); err != nil {
		return VerifiedClaims{}, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if leeway > 0 {
		opts = append(opts, jwt.WithLeeway(leeway))
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	raw := jwt.MapClaims{}
	parser := jwt.NewParser(opts...)
	if _, err := parser.ParseWithClaims(tokenString, raw, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}); err != nil {
		return VerifiedClaims{}, err
	}

	return claimsFromRaw(raw), nil
}

// usedTooEarly classifies the provider's clock-skew signal: the token's
// issue time is ahead of the server clock. This is the only failure class
// the gateway retries. Keep the string match here; it is the provider's
// documented message for skew and must not leak into the public contract.
func usedTooEarly(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, jwt.ErrTokenUsedBeforeIssued) || errors.Is(err, jwt.ErrTokenNotValidYet) {
		return true
	}
	return strings.Contains(err.Error(), "used too early")
}
