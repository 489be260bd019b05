package identity

import (
	"context"
	"time"
)

// UserProfile is the durable per-user document provisioned on first sight.
// Only the provisioner writes it, and only to fill an absent row; it is never
// deleted by this subsystem.
type UserProfile struct {
	UID            string    `json:"uid"`
	Email          string    `json:"email,omitempty"`
	DisplayName    string    `json:"displayName,omitempty"`
	PhotoURL       string    `json:"photoURL,omitempty"`
	SignInProvider string    `json:"provider,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

// ProfileStore is the persistence contract for user profiles.
//
// MergeWrite must be idempotent under concurrent first-writes for the same
// uid: it fills the row if absent and preserves existing content on races.
type ProfileStore interface {
	Get(ctx context.Context, uid string) (UserProfile, bool, error)
	MergeWrite(ctx context.Context, p UserProfile) error
}
