package identity

import (
	"context"
	"errors"
)

type ctxKey struct{}

// WithAuthContext stores the authenticated identity in context.
func WithAuthContext(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// FromContext returns the authenticated identity placed by the middleware.
func FromContext(ctx context.Context) (AuthContext, error) {
	if v, ok := ctx.Value(ctxKey{}).(AuthContext); ok && v.UID != "" {
		return v, nil
	}
	return AuthContext{}, errors.New("auth context not present")
}

// UID is a convenience accessor for handlers that only need the subject.
func UID(ctx context.Context) (string, error) {
	ac, err := FromContext(ctx)
	if err != nil {
		return "", err
	}
	return ac.UID, nil
}
