package catalog

import "time"

// Product is a catalog entry. Career is the authorization scope: admins may
// only mutate products whose career sits in their managed set.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Career      string    `json:"career"`
	Stock       int       `json:"stock"`
	Image       string    `json:"image"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput is a full product payload for creation.
type CreateInput struct {
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	Price       float64 `json:"price" binding:"min=0"`
	Category    string  `json:"category" binding:"required,min=1,max=100"`
	Career      string  `json:"career" binding:"required,min=1,max=50"`
	Stock       int     `json:"stock" binding:"min=0"`
	Image       string  `json:"image"`
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Career      *string  `json:"career"`
	Stock       *int     `json:"stock"`
	Image       *string  `json:"image"`
}

func (u UpdateInput) empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.Category == nil && u.Career == nil && u.Stock == nil && u.Image == nil
}

// ListRequest filters the catalog listing. RestrictCareers is the visibility
// set computed from the caller's role record; empty means no restriction.
// When Career is set explicitly it wins and RestrictCareers is ignored.
type ListRequest struct {
	Query    string
	Category string
	Career   string
	Limit    int
	Cursor   time.Time

	RestrictCareers []string
}

// ListPage is one page of a createdAt-descending listing. NextCursor is the
// createdAt of the last item, RFC3339; empty when the page was empty.
type ListPage struct {
	Items      []Product `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}
