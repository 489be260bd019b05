package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-commerce/internal/config"
	"campus-commerce/pkg/logger"
)

// AuthContext is the request-scoped authenticated identity handed to route
// handlers. UID is always non-empty; Profile is nil when provisioning is
// disabled or failed (the request stays authenticated either way).
type AuthContext struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Profile     *UserProfile
	Claims      VerifiedClaims
}

// Gateway is the authentication entry point: extract one credential, verify
// it against the identity provider (with a single clock-skew retry), and
// just-in-time provision a profile for first-seen subjects.
//
// The gateway holds no per-request state and no verification cache; every
// request re-verifies. Construct once at startup and share across requests.
type Gateway struct {
	verifier Verifier
	profiles ProfileStore
	cfg      config.IdentityConfig
}

func NewGateway(v Verifier, profiles ProfileStore, cfg config.IdentityConfig) (*Gateway, error) {
	if v == nil {
		return nil, errors.New("identity: verifier is required")
	}
	if cfg.ProvisioningEnabled && profiles == nil {
		return nil, errors.New("identity: profile store is required when provisioning is enabled")
	}
	if cfg.SkewTolerance <= 0 {
		cfg.SkewTolerance = 15 * time.Second
	}
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = 5 * time.Second
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 3 * time.Second
	}
	return &Gateway{verifier: v, profiles: profiles, cfg: cfg}, nil
}

// SessionCookieName exposes the configured cookie name for transport wiring.
func (g *Gateway) SessionCookieName() string { return g.cfg.SessionCookieName }

// Authenticate turns raw request credentials into an AuthContext.
// Failures are classified: ErrUnauthenticated when no credential is present,
// ErrInvalidCredential for anything that failed verification. Provisioning
// failures never surface here.
func (g *Gateway) Authenticate(ctx context.Context, authorization, sessionCookie string) (AuthContext, error) {
	cred := ExtractCredential(authorization, sessionCookie)
	if cred.Kind == CredentialNone {
		return AuthContext{}, ErrUnauthenticated
	}

	claims, err := g.verifyWithSkewRetry(ctx, cred)
	if err != nil {
		logger.From(ctx).Warn("credential verification failed", "kind", credKindName(cred.Kind), "err", err.Error())
		return AuthContext{}, fmt.Errorf("%w: verification failed", ErrInvalidCredential)
	}
	if claims.UID == "" {
		// A correctly configured provider always sets the subject.
		return AuthContext{}, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}

	profile := g.ensureProfile(ctx, claims)

	return AuthContext{
		UID:         claims.UID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		PhotoURL:    claims.PhotoURL,
		Profile:     profile,
		Claims:      claims,
	}, nil
}

// verifyWithSkewRetry calls the provider with zero tolerance first and, only
// when the failure is the provider's "used too early" signal, retries exactly
// once with the configured tolerance. Every other failure (expiry, signature,
// revocation) propagates immediately.
func (g *Gateway) verifyWithSkewRetry(ctx context.Context, cred Credential) (VerifiedClaims, error) {
	vctx, cancel := context.WithTimeout(ctx, g.cfg.VerifyTimeout)
	defer cancel()

	verify := g.verifier.VerifyIDToken
	if cred.Kind == CredentialSessionCookie {
		verify = g.verifier.VerifySessionCookie
	}

	claims, err := verify(vctx, cred.Value, 0)
	if err == nil {
		return claims, nil
	}
	if !usedTooEarly(err) {
		return VerifiedClaims{}, err
	}

	logger.From(ctx).Warn("token issued ahead of server clock, retrying with skew tolerance",
		"kind", credKindName(cred.Kind), "tolerance", g.cfg.SkewTolerance.String())
	return verify(vctx, cred.Value, g.cfg.SkewTolerance)
}

// ensureProfile provisions a profile row for first-seen subjects. Best
// effort by contract: any storage failure logs and yields a nil profile,
// never an auth failure.
func (g *Gateway) ensureProfile(ctx context.Context, claims VerifiedClaims) *UserProfile {
	if !g.cfg.ProvisioningEnabled || g.profiles == nil {
		return nil
	}

	sctx, cancel := context.WithTimeout(ctx, g.cfg.StoreTimeout)
	defer cancel()

	existing, found, err := g.profiles.Get(sctx, claims.UID)
	if err != nil {
		logger.From(ctx).Warn("profile read failed, continuing without profile", "uid", claims.UID, "err", err.Error())
		return nil
	}
	if found {
		return &existing
	}

	p := UserProfile{
		UID:            claims.UID,
		Email:          claims.Email,
		DisplayName:    claims.DisplayName,
		PhotoURL:       claims.PhotoURL,
		SignInProvider: claims.SignInProvider,
	}
	if err := g.profiles.MergeWrite(sctx, p); err != nil {
		logger.From(ctx).Warn("profile provisioning failed, continuing without profile", "uid", claims.UID, "err", err.Error())
		return nil
	}
	return &p
}

func credKindName(k CredentialKind) string {
	switch k {
	case CredentialBearer:
		return "bearer"
	case CredentialSessionCookie:
		return "session_cookie"
	default:
		return "none"
	}
}
