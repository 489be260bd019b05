package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"campus-commerce/internal/audit"
	"campus-commerce/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Authorizer is the slice of the authorization guard the catalog needs.
type Authorizer interface {
	RequireManage(ctx context.Context, uid, career string) error
	VisibleCareers(ctx context.Context, uid string) ([]string, error)
}

// Syncer mirrors product content into the retrieval index. Both calls are
// best-effort: implementations log failures and never return them.
type Syncer interface {
	SyncProduct(ctx context.Context, p Product)
	RemoveProduct(ctx context.Context, productID string)
}

// Service owns catalog business rules.
//
// Authorization invariant: every mutation passes RequireManage against the
// TARGET career before the repository is touched. For updates that move a
// product between careers, the target is the new career.
type Service struct {
	repo   Repository
	authz  Authorizer
	audit  *audit.Service
	syncer Syncer
	clock  func() time.Time
}

func NewService(repo Repository, authz Authorizer, auditSvc *audit.Service, syncer Syncer) *Service {
	return &Service{repo: repo, authz: authz, audit: auditSvc, syncer: syncer, clock: time.Now}
}

// ListPublic serves the unauthenticated storefront: no visibility math.
func (s *Service) ListPublic(ctx context.Context, req ListRequest) (ListPage, error) {
	req.RestrictCareers = nil
	items, err := s.repo.List(ctx, req)
	if err != nil {
		return ListPage{}, err
	}
	return toPage(items), nil
}

// List serves authenticated callers. When no explicit career filter was
// given, the caller's visibility set narrows the result; an explicit career
// always wins over the computed restriction.
func (s *Service) List(ctx context.Context, uid string, req ListRequest) (ListPage, error) {
	if req.Career == "" {
		restrict, err := s.authz.VisibleCareers(ctx, uid)
		if err != nil {
			return ListPage{}, err
		}
		req.RestrictCareers = restrict
	} else {
		req.RestrictCareers = nil
	}

	items, err := s.repo.List(ctx, req)
	if err != nil {
		return ListPage{}, err
	}
	return toPage(items), nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	p, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, uid string, in CreateInput) (Product, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Career = strings.TrimSpace(in.Career)
	if in.Name == "" || in.Category == "" || in.Career == "" || in.Price < 0 || in.Stock < 0 {
		return Product{}, ErrInvalidArgument
	}

	if err := s.authz.RequireManage(ctx, uid, in.Career); err != nil {
		return Product{}, err
	}

	now := s.clock().UTC()
	p := Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Career:      in.Career,
		Stock:       in.Stock,
		Image:       in.Image,
		CreatedBy:   uid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}

	s.logAction(ctx, uid, p, "product created")
	s.syncProduct(ctx, p)
	return p, nil
}

func (s *Service) Update(ctx context.Context, uid, id string, in UpdateInput) (Product, error) {
	current, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !ok {
		return Product{}, ErrNotFound
	}

	target := current.Career
	if in.Career != nil && strings.TrimSpace(*in.Career) != "" {
		trimmed := strings.TrimSpace(*in.Career)
		in.Career = &trimmed
		target = trimmed
	}
	if err := s.authz.RequireManage(ctx, uid, target); err != nil {
		return Product{}, err
	}

	if in.empty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, in, s.clock().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}

	s.logAction(ctx, uid, updated, "product updated")
	s.syncProduct(ctx, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, uid, id string) error {
	current, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := s.authz.RequireManage(ctx, uid, current.Career); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	s.logAction(ctx, uid, current, "product deleted")
	if s.syncer != nil {
		s.syncer.RemoveProduct(ctx, id)
	}
	return nil
}

// logAction appends an audit event. Best-effort: audit failures must not
// fail the mutation that already committed.
func (s *Service) logAction(ctx context.Context, uid string, p Product, msg string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogProductAction(ctx, p.Career, uid, p.ID, msg); err != nil {
		logger.From(ctx).Warn("audit append failed", "product_id", p.ID, "err", err.Error())
	}
}

func (s *Service) syncProduct(ctx context.Context, p Product) {
	if s.syncer != nil {
		s.syncer.SyncProduct(ctx, p)
	}
}

func toPage(items []Product) ListPage {
	page := ListPage{Items: items}
	if len(items) > 0 {
		page.NextCursor = items[len(items)-1].CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return page
}
