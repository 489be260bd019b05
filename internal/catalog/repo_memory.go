package catalog

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory product repository for tests and early
// development. It mirrors the Postgres repo's filtering semantics.
type MemoryRepo struct {
	mu       sync.Mutex
	products map[string]Product
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{products: map[string]Product{}}
}

func (r *MemoryRepo) Create(ctx context.Context, p Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	return p, ok, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id string, in UpdateInput, now time.Time) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, sql.ErrNoRows
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Career != nil {
		p.Career = *in.Career
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	p.UpdatedAt = now
	r.products[id] = p
	return p, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

func (r *MemoryRepo) List(ctx context.Context, req ListRequest) ([]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Product, 0)
	for _, p := range r.products {
		if req.Category != "" && p.Category != req.Category {
			continue
		}
		if req.Career != "" {
			if p.Career != req.Career {
				continue
			}
		} else if len(req.RestrictCareers) > 0 && !slices.Contains(req.RestrictCareers, p.Career) {
			continue
		}
		if req.Query != "" {
			text := strings.ToLower(p.Name + " " + p.Description)
			if !strings.Contains(text, strings.ToLower(req.Query)) {
				continue
			}
		}
		if !req.Cursor.IsZero() && !p.CreatedAt.Before(req.Cursor) {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
