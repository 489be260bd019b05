package rbac

import (
	"context"
	"fmt"
	"time"

	"campus-commerce/internal/identity"
)

// ErrForbidden: the subject is authenticated but may not manage the
// requested career. Distinct from authentication failures by contract.
var ErrForbidden = fmt.Errorf("forbidden")

// Guard makes career-scoped authorization decisions. Role resolution is lazy:
// the role store is consulted only when a guard operation runs, not on every
// authenticated request.
//
// Fail-closed boundary: a role-store outage denies, it never grants.
type Guard struct {
	store        RoleStore
	storeTimeout time.Duration
}

func NewGuard(store RoleStore, storeTimeout time.Duration) *Guard {
	if storeTimeout <= 0 {
		storeTimeout = 3 * time.Second
	}
	return &Guard{store: store, storeTimeout: storeTimeout}
}

// RequireManage allows the mutation iff the subject is a platform admin, or
// holds the admin role with the career in their managed set.
func (g *Guard) RequireManage(ctx context.Context, uid, career string) error {
	rec, err := g.resolve(ctx, uid)
	if err != nil {
		return err
	}
	if rec.PlatformAdmin {
		return nil
	}
	if rec.HasRole(RoleAdmin) && rec.ManagesCareer(career) {
		return nil
	}
	return fmt.Errorf("%w: cannot manage products for career %q", ErrForbidden, career)
}

// VisibleCareers computes the restriction set for list queries. A nil slice
// means "no restriction": platform admins see everything, and so do subjects
// without the admin role (the catalog is readable by any authenticated user;
// the restriction only narrows an admin's management view). An explicit
// career filter supplied by the caller always takes precedence over this set.
func (g *Guard) VisibleCareers(ctx context.Context, uid string) ([]string, error) {
	rec, err := g.resolve(ctx, uid)
	if err != nil {
		return nil, err
	}
	if rec.PlatformAdmin {
		return nil, nil
	}
	if rec.HasRole(RoleAdmin) {
		return rec.AdminCareers, nil
	}
	return nil, nil
}

func (g *Guard) resolve(ctx context.Context, uid string) (RoleRecord, error) {
	if g.store == nil {
		return RoleRecord{}, fmt.Errorf("%w: role store not configured", identity.ErrUnavailable)
	}
	sctx, cancel := context.WithTimeout(ctx, g.storeTimeout)
	defer cancel()

	rec, err := g.store.Get(sctx, uid)
	if err != nil {
		return RoleRecord{}, fmt.Errorf("%w: role lookup failed: %v", identity.ErrUnavailable, err)
	}
	return rec, nil
}
