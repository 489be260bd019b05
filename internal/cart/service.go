package cart

import (
	"context"
	"errors"
	"sort"
	"time"

	"campus-commerce/internal/catalog"
	"campus-commerce/pkg/logger"
)

var ErrInvalidArgument = errors.New("invalid argument")

// ProductGetter is the slice of the catalog the cart needs for enrichment.
type ProductGetter interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

// Service owns cart operations. Carts are strictly per-subject: the uid
// always comes from the authenticated context, never from the payload.
type Service struct {
	store    Store
	products ProductGetter
	clock    func() time.Time
}

func NewService(store Store, products ProductGetter) *Service {
	return &Service{store: store, products: products, clock: time.Now}
}

func (s *Service) Get(ctx context.Context, uid string) (Cart, error) {
	items, updatedAt, err := s.store.Items(ctx, uid)
	if err != nil {
		return Cart{}, err
	}
	return toCart(uid, items, updatedAt), nil
}

// GetFull joins each line with catalog details. Products that disappeared
// from the catalog stay in the cart with zeroed details.
func (s *Service) GetFull(ctx context.Context, uid string) (FullCart, error) {
	items, updatedAt, err := s.store.Items(ctx, uid)
	if err != nil {
		return FullCart{}, err
	}

	out := FullCart{UserID: uid, Items: make([]FullItem, 0, len(items)), UpdatedAt: updatedAt}
	for pid, qty := range items {
		line := FullItem{ProductID: pid, Quantity: qty, Name: "Unknown Product"}
		p, err := s.products.Get(ctx, pid)
		if err == nil {
			line.Name = p.Name
			line.Description = p.Description
			line.Price = p.Price
			line.Image = p.Image
			line.Category = p.Category
			line.Career = p.Career
			line.Stock = p.Stock
		} else if !errors.Is(err, catalog.ErrNotFound) {
			logger.From(ctx).Warn("cart enrichment lookup failed", "product_id", pid, "err", err.Error())
		}
		out.Items = append(out.Items, line)
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ProductID < out.Items[j].ProductID })
	return out, nil
}

// AddItem adds a quantity delta; a resulting quantity of zero or below
// removes the line.
func (s *Service) AddItem(ctx context.Context, uid, productID string, quantity int) (Cart, error) {
	if productID == "" {
		return Cart{}, ErrInvalidArgument
	}
	if err := s.store.AddDelta(ctx, uid, productID, quantity, s.clock()); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, uid)
}

// SetItemQuantity sets the exact quantity of a line.
func (s *Service) SetItemQuantity(ctx context.Context, uid, productID string, quantity int) (Cart, error) {
	if productID == "" {
		return Cart{}, ErrInvalidArgument
	}
	if err := s.store.SetQuantity(ctx, uid, productID, quantity, s.clock()); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, uid)
}

func (s *Service) RemoveItem(ctx context.Context, uid, productID string) (Cart, error) {
	if productID == "" {
		return Cart{}, ErrInvalidArgument
	}
	if err := s.store.Remove(ctx, uid, productID, s.clock()); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, uid)
}

func (s *Service) Clear(ctx context.Context, uid string) (Cart, error) {
	if err := s.store.Clear(ctx, uid); err != nil {
		return Cart{}, err
	}
	return Cart{UserID: uid, Items: []Item{}}, nil
}

func toCart(uid string, items map[string]int, updatedAt time.Time) Cart {
	c := Cart{UserID: uid, Items: make([]Item, 0, len(items)), UpdatedAt: updatedAt}
	for pid, qty := range items {
		c.Items = append(c.Items, Item{ProductID: pid, Quantity: qty})
	}
	sort.Slice(c.Items, func(i, j int) bool { return c.Items[i].ProductID < c.Items[j].ProductID })
	return c
}
