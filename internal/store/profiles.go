package store

import (
	"context"
	"database/sql"
	"errors"

	"campus-commerce/internal/identity"
)

// ProfileStore persists user profiles in Postgres.
//
// Expected table:
//
//	CREATE TABLE user_profiles (
//	    uid              text PRIMARY KEY,
//	    email            text NOT NULL DEFAULT '',
//	    display_name     text NOT NULL DEFAULT '',
//	    photo_url        text NOT NULL DEFAULT '',
//	    sign_in_provider text NOT NULL DEFAULT '',
//	    created_at       timestamptz NOT NULL DEFAULT now()
//	);
type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Get(ctx context.Context, uid string) (identity.UserProfile, bool, error) {
	var p identity.UserProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT uid, email, display_name, photo_url, sign_in_provider, created_at
		FROM user_profiles
		WHERE uid = $1
	`, uid).Scan(&p.UID, &p.Email, &p.DisplayName, &p.PhotoURL, &p.SignInProvider, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.UserProfile{}, false, nil
	}
	if err != nil {
		return identity.UserProfile{}, false, err
	}
	return p, true, nil
}

// MergeWrite fills the profile row if absent and leaves an existing row
// untouched. ON CONFLICT DO NOTHING makes concurrent first-writes for the
// same uid commute, which is the whole provisioning race story: no locks,
// both writers converge on one row.
func (s *ProfileStore) MergeWrite(ctx context.Context, p identity.UserProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (uid, email, display_name, photo_url, sign_in_provider)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid) DO NOTHING
	`, p.UID, p.Email, p.DisplayName, p.PhotoURL, p.SignInProvider)
	return err
}
