package domain

import "time"

// AuditLog is one append-only record of a privileged action. Entries are
// never updated or deleted by the service.
type AuditLog struct {
	ID         string
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]any
	CreatedAt  time.Time
}
