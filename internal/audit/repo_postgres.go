package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends audit events to Postgres.
//
// Expected table:
//
//	CREATE TABLE audit_events (
//	    id         uuid PRIMARY KEY,
//	    career     text NOT NULL,
//	    type       text NOT NULL,
//	    actor_uid  text NOT NULL DEFAULT '',
//	    ip_address text NOT NULL DEFAULT '',
//	    product_id text NOT NULL DEFAULT '',
//	    message    text NOT NULL DEFAULT '',
//	    metadata   text NOT NULL DEFAULT '',
//	    created_at timestamptz NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, career, type, actor_uid, ip_address, product_id, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.Career, e.Type, e.ActorUID, e.IPAddress, e.ProductID, e.Message, e.Metadata, e.CreatedAt)
	return err
}
