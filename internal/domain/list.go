package domain

import "time"

// ListVisibility is a plain tag on the list; access control is always
// evaluated against the owning user, never against this field or the
// organization's membership.
type ListVisibility string

const (
	VisibilityPrivate ListVisibility = "private"
	VisibilityShared  ListVisibility = "shared"
)

// List belongs to exactly one owning user (its creator) and optionally to
// an organization. The organization never confers access.
type List struct {
	ID             string
	Name           string
	Visibility     ListVisibility
	IsDefault      bool
	OwnerID        string
	OrganizationID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// ListUpdate is the allow-listed set of mutable list fields. Nil means
// "leave unchanged". Ownership and organization are deliberately absent.
type ListUpdate struct {
	Name       *string
	Visibility *ListVisibility
	IsDefault  *bool
}
