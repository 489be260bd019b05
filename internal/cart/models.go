package cart

import "time"

type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the transport shape of a user's cart. An absent cart reads as an
// empty item list, never an error.
type Cart struct {
	UserID    string    `json:"userId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// FullItem is a cart line enriched with catalog details for the storefront.
type FullItem struct {
	ProductID   string  `json:"productId"`
	Quantity    int     `json:"quantity"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category,omitempty"`
	Career      string  `json:"career,omitempty"`
	Stock       int     `json:"stock"`
}

type FullCart struct {
	UserID    string     `json:"userId"`
	Items     []FullItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt,omitzero"`
}
