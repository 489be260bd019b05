package store

import (
	"context"
	"database/sql"
	"errors"

	"campus-commerce/internal/rbac"

	"github.com/jackc/pgx/v5/pgtype"
)

// RoleStore reads per-subject role records from Postgres.
//
// Expected table (maintained by an out-of-band admin tool, read-only here):
//
//	CREATE TABLE user_roles (
//	    uid            text PRIMARY KEY,
//	    roles          text[] NOT NULL DEFAULT '{}',
//	    platform_admin boolean NOT NULL DEFAULT false,
//	    admin_careers  text[] NOT NULL DEFAULT '{}'
//	);
type RoleStore struct {
	db *sql.DB
}

func NewRoleStore(db *sql.DB) *RoleStore {
	return &RoleStore{db: db}
}

// Get returns the role record for uid. Absence of a row is the zero record,
// never an error; only I/O failures propagate.
func (s *RoleStore) Get(ctx context.Context, uid string) (rbac.RoleRecord, error) {
	var roles, careers []string
	rec := rbac.RoleRecord{UID: uid}

	// pgtype.Map adapts Postgres text[] scanning through database/sql.
	m := pgtype.NewMap()
	err := s.db.QueryRowContext(ctx, `
		SELECT roles, platform_admin, admin_careers
		FROM user_roles
		WHERE uid = $1
	`, uid).Scan(m.SQLScanner(&roles), &rec.PlatformAdmin, m.SQLScanner(&careers))
	if errors.Is(err, sql.ErrNoRows) {
		return rbac.RoleRecord{UID: uid}, nil
	}
	if err != nil {
		return rbac.RoleRecord{}, err
	}

	rec.Roles = roles
	rec.AdminCareers = careers
	return rec, nil
}
