package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-commerce/internal/audit"
	"campus-commerce/internal/rbac"
)

// fakeAuthz allows uids listed in manage (per career) and returns the
// configured visibility set.
type fakeAuthz struct {
	manage      map[string][]string
	visible     map[string][]string
	err         error
	manageCalls int
}

func (f *fakeAuthz) RequireManage(_ context.Context, uid, career string) error {
	f.manageCalls++
	if f.err != nil {
		return f.err
	}
	for _, c := range f.manage[uid] {
		if c == "*" || c == career {
			return nil
		}
	}
	return rbac.ErrForbidden
}

func (f *fakeAuthz) VisibleCareers(_ context.Context, uid string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.visible[uid], nil
}

type recordingSyncer struct {
	synced  []string
	removed []string
}

func (r *recordingSyncer) SyncProduct(_ context.Context, p Product)        { r.synced = append(r.synced, p.ID) }
func (r *recordingSyncer) RemoveProduct(_ context.Context, productID string) { r.removed = append(r.removed, productID) }

func newTestService(authz *fakeAuthz) (*Service, *MemoryRepo, *audit.MemoryRepo, *recordingSyncer) {
	repo := NewMemoryRepo()
	auditRepo := audit.NewMemoryRepo()
	syncer := &recordingSyncer{}
	svc := NewService(repo, authz, audit.NewService(auditRepo), syncer)
	return svc, repo, auditRepo, syncer
}

func seed(t *testing.T, repo *MemoryRepo, id, career string, createdAt time.Time) Product {
	t.Helper()
	p := Product{
		ID:        id,
		Name:      "Product " + id,
		Price:     10,
		Category:  "books",
		Career:    career,
		Stock:     5,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return p
}

func TestCreateRequiresManagement(t *testing.T) {
	authz := &fakeAuthz{manage: map[string][]string{"admin-sis": {"SIS"}}}
	svc, repo, auditRepo, syncer := newTestService(authz)
	ctx := context.Background()

	in := CreateInput{Name: "Laptop", Price: 999, Category: "tech", Career: "SIS", Stock: 3}

	p, err := svc.Create(ctx, "admin-sis", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" || p.CreatedBy != "admin-sis" {
		t.Fatalf("product = %+v", p)
	}
	if events := auditRepo.Events(); len(events) != 1 {
		t.Fatalf("audit events = %d, want 1", len(events))
	}
	if len(syncer.synced) != 1 || syncer.synced[0] != p.ID {
		t.Fatalf("synced = %v", syncer.synced)
	}

	// Denied creations must not touch the repository.
	in.Career = "ADM"
	if _, err := svc.Create(ctx, "admin-sis", in); !errors.Is(err, rbac.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if _, ok, _ := repo.Get(ctx, p.ID); !ok {
		t.Fatal("existing product disappeared")
	}
	page, err := svc.ListPublic(ctx, ListRequest{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("items = %d, want 1 (forbidden create persisted?)", len(page.Items))
	}
}

func TestCreateValidatesInput(t *testing.T) {
	authz := &fakeAuthz{manage: map[string][]string{"root": {"*"}}}
	svc, _, _, _ := newTestService(authz)

	bad := []CreateInput{
		{Name: "", Category: "tech", Career: "SIS"},
		{Name: "x", Category: "", Career: "SIS"},
		{Name: "x", Category: "tech", Career: "  "},
		{Name: "x", Category: "tech", Career: "SIS", Price: -1},
		{Name: "x", Category: "tech", Career: "SIS", Stock: -1},
	}
	for _, in := range bad {
		if _, err := svc.Create(context.Background(), "root", in); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("input %+v: err = %v, want ErrInvalidArgument", in, err)
		}
	}
	if authz.manageCalls != 0 {
		t.Fatalf("authorization consulted for invalid input (%d calls)", authz.manageCalls)
	}
}

func TestUpdateGuardsTargetCareer(t *testing.T) {
	authz := &fakeAuthz{manage: map[string][]string{"admin-sis": {"SIS"}}}
	svc, repo, _, _ := newTestService(authz)
	ctx := context.Background()
	seed(t, repo, "p1", "SIS", time.Now().Add(-time.Hour))

	// Moving the product into a career outside the managed set is denied,
	// even though the current career is managed.
	target := "ADM"
	_, err := svc.Update(ctx, "admin-sis", "p1", UpdateInput{Career: &target})
	if !errors.Is(err, rbac.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	name := "Renamed"
	p, err := svc.Update(ctx, "admin-sis", "p1", UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Name != "Renamed" {
		t.Fatalf("name = %q", p.Name)
	}
}

func TestUpdateMissingProduct(t *testing.T) {
	authz := &fakeAuthz{manage: map[string][]string{"root": {"*"}}}
	svc, _, _, _ := newTestService(authz)

	name := "x"
	if _, err := svc.Update(context.Background(), "root", "nope", UpdateInput{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteGuardsCurrentCareer(t *testing.T) {
	authz := &fakeAuthz{manage: map[string][]string{"admin-sis": {"SIS"}}}
	svc, repo, _, syncer := newTestService(authz)
	ctx := context.Background()
	seed(t, repo, "p1", "SIS", time.Now())
	seed(t, repo, "p2", "ADM", time.Now())

	if err := svc.Delete(ctx, "admin-sis", "p2"); !errors.Is(err, rbac.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, "admin-sis", "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "p1"); ok {
		t.Fatal("product still present after delete")
	}
	if len(syncer.removed) != 1 || syncer.removed[0] != "p1" {
		t.Fatalf("removed = %v", syncer.removed)
	}
}

func TestListAppliesVisibilityOnlyWithoutExplicitCareer(t *testing.T) {
	authz := &fakeAuthz{
		manage:  map[string][]string{"admin-sis": {"SIS"}},
		visible: map[string][]string{"admin-sis": {"SIS"}},
	}
	svc, repo, _, _ := newTestService(authz)
	ctx := context.Background()
	now := time.Now()
	seed(t, repo, "p1", "SIS", now.Add(-3*time.Minute))
	seed(t, repo, "p2", "ADM", now.Add(-2*time.Minute))
	seed(t, repo, "p3", "SIS", now.Add(-time.Minute))

	// No explicit filter: visibility narrows the result.
	page, err := svc.List(ctx, "admin-sis", ListRequest{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(page.Items))
	}
	for _, p := range page.Items {
		if p.Career != "SIS" {
			t.Fatalf("leaked career %q", p.Career)
		}
	}

	// Explicit career always wins over the computed restriction.
	page, err = svc.List(ctx, "admin-sis", ListRequest{Career: "ADM", Limit: 10})
	if err != nil {
		t.Fatalf("list explicit: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "p2" {
		t.Fatalf("items = %+v, want just p2", page.Items)
	}

	// Unrestricted caller sees everything, newest first.
	page, err = svc.List(ctx, "someone-else", ListRequest{Limit: 10})
	if err != nil {
		t.Fatalf("list unrestricted: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(page.Items))
	}
	if page.Items[0].ID != "p3" {
		t.Fatalf("order: first = %s, want p3", page.Items[0].ID)
	}
	if page.NextCursor == "" {
		t.Fatal("expected a next cursor on a non-empty page")
	}
}

func TestListVisibilityErrorFailsClosed(t *testing.T) {
	authz := &fakeAuthz{err: errors.New("roles unavailable")}
	svc, repo, _, _ := newTestService(authz)
	seed(t, repo, "p1", "SIS", time.Now())

	if _, err := svc.List(context.Background(), "u1", ListRequest{Limit: 10}); err == nil {
		t.Fatal("expected error when visibility cannot be computed")
	}
}
