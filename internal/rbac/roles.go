package rbac

import (
	"context"
	"slices"
)

// RoleAdmin is the only role tag with management semantics; a subject with it
// may manage products inside the careers listed on their role record.
const RoleAdmin = "admin"

// RoleRecord is the per-subject authorization record.
//
// An absent record is equivalent to the zero value: no roles, not a platform
// admin, no managed careers. Stores must never treat absence as an error.
type RoleRecord struct {
	UID           string   `json:"uid"`
	Roles         []string `json:"roles"`
	PlatformAdmin bool     `json:"platformAdmin"`
	AdminCareers  []string `json:"adminCareers"`
}

func (r RoleRecord) HasRole(role string) bool {
	return slices.Contains(r.Roles, role)
}

func (r RoleRecord) ManagesCareer(career string) bool {
	return slices.Contains(r.AdminCareers, career)
}

// RoleStore reads role records by subject.
//
// Implementations must return the zero record (not an error) when no record
// exists for the uid, and a real error only on I/O failure.
type RoleStore interface {
	Get(ctx context.Context, uid string) (RoleRecord, error)
}
