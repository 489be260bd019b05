package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Repository abstracts product persistence.
type Repository interface {
	Create(ctx context.Context, p Product) error
	Get(ctx context.Context, id string) (Product, bool, error)
	Update(ctx context.Context, id string, in UpdateInput, now time.Time) (Product, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, req ListRequest) ([]Product, error)
}

// PostgresRepo stores products in Postgres.
//
// Expected table:
//
//	CREATE TABLE products (
//	    id          uuid PRIMARY KEY,
//	    name        text NOT NULL,
//	    description text NOT NULL DEFAULT '',
//	    price       numeric NOT NULL CHECK (price >= 0),
//	    category    text NOT NULL,
//	    career      text NOT NULL,
//	    stock       integer NOT NULL DEFAULT 0,
//	    image       text NOT NULL DEFAULT '',
//	    created_by  text NOT NULL DEFAULT '',
//	    created_at  timestamptz NOT NULL,
//	    updated_at  timestamptz NOT NULL
//	);
//	CREATE INDEX products_created_at_idx ON products (created_at DESC);
//	CREATE INDEX products_career_idx ON products (career);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, p Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, category, career, stock, image, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID, p.Name, p.Description, p.Price, p.Category, p.Career, p.Stock, p.Image, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Product, bool, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, category, career, stock, image, created_by, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, err
	}
	return p, true, nil
}

// Update applies the non-nil fields and bumps updated_at. Returns the row as
// stored after the write; sql.ErrNoRows surfaces as a not-found product.
func (r *PostgresRepo) Update(ctx context.Context, id string, in UpdateInput, now time.Time) (Product, error) {
	set := []string{"updated_at = $2"}
	args := []any{id, now}

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Price != nil {
		add("price", *in.Price)
	}
	if in.Category != nil {
		add("category", *in.Category)
	}
	if in.Career != nil {
		add("career", *in.Career)
	}
	if in.Stock != nil {
		add("stock", *in.Stock)
	}
	if in.Image != nil {
		add("image", *in.Image)
	}

	q := fmt.Sprintf(`
		UPDATE products SET %s
		WHERE id = $1
		RETURNING id, name, description, price, category, career, stock, image, created_by, created_at, updated_at
	`, strings.Join(set, ", "))
	return scanProduct(r.db.QueryRowContext(ctx, q, args...))
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepo) List(ctx context.Context, req ListRequest) ([]Product, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if req.Category != "" {
		add("category = $%d", req.Category)
	}
	// Explicit career wins; the restriction set only applies without one.
	if req.Career != "" {
		add("career = $%d", req.Career)
	} else if len(req.RestrictCareers) > 0 {
		m := pgtype.NewMap()
		args = append(args, careersParam(m, req.RestrictCareers))
		where = append(where, fmt.Sprintf("career = ANY($%d)", len(args)))
	}
	if req.Query != "" {
		args = append(args, req.Query)
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", n, n))
	}
	if !req.Cursor.IsZero() {
		add("created_at < $%d", req.Cursor)
	}

	q := `
		SELECT id, name, description, price, category, career, stock, image, created_by, created_at, updated_at
		FROM products
	`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Career,
		&p.Stock, &p.Image, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// careersParam encodes a []string as a Postgres text[] argument through
// database/sql using the pgx type map.
func careersParam(m *pgtype.Map, careers []string) any {
	v, err := m.Encode(pgtype.TextArrayOID, pgtype.TextFormatCode, careers, nil)
	if err != nil {
		// Fall back to a literal; careers are short identifiers.
		return "{" + strings.Join(careers, ",") + "}"
	}
	return string(v)
}
