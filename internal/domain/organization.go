package domain

import "time"

// Organization groups lists under a single owning user. Ownership is fixed
// at creation; there is no transfer operation.
type Organization struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
