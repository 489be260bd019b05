package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-commerce/internal/catalog"
)

// memStore mirrors RedisStore semantics in memory.
type memStore struct {
	carts   map[string]map[string]int
	updated map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{carts: map[string]map[string]int{}, updated: map[string]time.Time{}}
}

func (m *memStore) cart(uid string) map[string]int {
	c, ok := m.carts[uid]
	if !ok {
		c = map[string]int{}
		m.carts[uid] = c
	}
	return c
}

func (m *memStore) Items(_ context.Context, uid string) (map[string]int, time.Time, error) {
	out := map[string]int{}
	for pid, qty := range m.carts[uid] {
		out[pid] = qty
	}
	return out, m.updated[uid], nil
}

func (m *memStore) AddDelta(_ context.Context, uid, productID string, delta int, now time.Time) error {
	c := m.cart(uid)
	c[productID] += delta
	if c[productID] <= 0 {
		delete(c, productID)
	}
	m.updated[uid] = now
	return nil
}

func (m *memStore) SetQuantity(_ context.Context, uid, productID string, qty int, now time.Time) error {
	c := m.cart(uid)
	if qty <= 0 {
		delete(c, productID)
	} else {
		c[productID] = qty
	}
	m.updated[uid] = now
	return nil
}

func (m *memStore) Remove(_ context.Context, uid, productID string, now time.Time) error {
	delete(m.cart(uid), productID)
	m.updated[uid] = now
	return nil
}

func (m *memStore) Clear(_ context.Context, uid string) error {
	delete(m.carts, uid)
	delete(m.updated, uid)
	return nil
}

type stubProducts struct {
	products map[string]catalog.Product
}

func (s *stubProducts) Get(_ context.Context, id string) (catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func TestGetAbsentCartIsEmpty(t *testing.T) {
	svc := NewService(newMemStore(), &stubProducts{})

	c, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.UserID != "u1" {
		t.Fatalf("uid = %q", c.UserID)
	}
	if len(c.Items) != 0 {
		t.Fatalf("items = %v, want empty", c.Items)
	}
	if c.Items == nil {
		t.Fatal("items must serialize as [], not null")
	}
}

func TestAddItemAccumulatesAndRemovesAtZero(t *testing.T) {
	svc := NewService(newMemStore(), &stubProducts{})
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	c, err := svc.AddItem(ctx, "u1", "p1", 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 5 {
		t.Fatalf("cart = %+v", c)
	}

	// A negative delta down to zero removes the line entirely.
	c, err = svc.AddItem(ctx, "u1", "p1", -5)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(c.Items) != 0 {
		t.Fatalf("cart = %+v, want empty", c)
	}
}

func TestSetItemQuantity(t *testing.T) {
	svc := NewService(newMemStore(), &stubProducts{})
	ctx := context.Background()

	c, err := svc.SetItemQuantity(ctx, "u1", "p1", 4)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 4 {
		t.Fatalf("cart = %+v", c)
	}

	c, err = svc.SetItemQuantity(ctx, "u1", "p1", 0)
	if err != nil {
		t.Fatalf("set zero: %v", err)
	}
	if len(c.Items) != 0 {
		t.Fatalf("cart = %+v, want empty", c)
	}
}

func TestItemOpsRejectEmptyProductID(t *testing.T) {
	svc := NewService(newMemStore(), &stubProducts{})
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", "", 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("add err = %v", err)
	}
	if _, err := svc.SetItemQuantity(ctx, "u1", "", 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("set err = %v", err)
	}
	if _, err := svc.RemoveItem(ctx, "u1", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("remove err = %v", err)
	}
}

func TestClear(t *testing.T) {
	svc := NewService(newMemStore(), &stubProducts{})
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	c, err := svc.Clear(ctx, "u1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(c.Items) != 0 {
		t.Fatalf("cart = %+v", c)
	}
	c, err = svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(c.Items) != 0 {
		t.Fatalf("cart after clear = %+v", c)
	}
}

func TestGetFullEnrichment(t *testing.T) {
	products := &stubProducts{products: map[string]catalog.Product{
		"p1": {ID: "p1", Name: "Calculus Vol. 1", Price: 35, Category: "books", Career: "SIS", Stock: 10},
	}}
	svc := NewService(newMemStore(), products)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddItem(ctx, "u1", "gone", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	full, err := svc.GetFull(ctx, "u1")
	if err != nil {
		t.Fatalf("get full: %v", err)
	}
	if len(full.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(full.Items))
	}
	// Sorted by product id: "gone" before "p1".
	if full.Items[0].ProductID != "gone" || full.Items[0].Name != "Unknown Product" {
		t.Fatalf("vanished product line = %+v", full.Items[0])
	}
	if full.Items[1].Name != "Calculus Vol. 1" || full.Items[1].Price != 35 {
		t.Fatalf("enriched line = %+v", full.Items[1])
	}
}
