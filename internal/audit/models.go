package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - career is required: admin actions are always scoped to a career.
// - actor and ip capture are best-effort; do not block critical flows on audit failures.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for retention.
type Event struct {
	ID     string `json:"id" db:"id"`
	Career string `json:"career" db:"career"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUID is the authenticated subject causing the event.
	ActorUID string `json:"actor_uid,omitempty" db:"actor_uid"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// ProductID is the mutated catalog entry, when the event targets one.
	ProductID string `json:"product_id,omitempty" db:"product_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeProductAction EventType = "product_action"
	EventTypeAdminAction   EventType = "admin_action"
)
