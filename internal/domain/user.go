package domain

import "time"

// UserRole is a plain tag; no transition rules exist between roles.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// UserStatus is a plain tag; no lifecycle state machine is defined.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

// AuthProvider records where the account's identity was established.
type AuthProvider string

const (
	ProviderEmail     AuthProvider = "email"
	ProviderGoogle    AuthProvider = "google"
	ProviderMicrosoft AuthProvider = "microsoft"
)

// User is the principal record. Email and username are each unique among
// non-deleted users. PasswordHash is nil for accounts created through an
// external identity provider.
type User struct {
	ID             string
	Email          string
	Username       string
	PasswordHash   *string // bcrypt encoded, nil for external-auth-only accounts
	AuthProvider   AuthProvider
	AuthProviderID *string
	Role           UserRole
	Status         UserStatus

	EmailVerified         bool
	VerificationTokenHash *string // cleared once consumed

	ResetTokenHash      *string // cleared once consumed or expired
	ResetTokenExpiresAt *time.Time

	// RefreshTokenHash is the single refresh slot: at most one valid
	// refresh token per user at a time.
	RefreshTokenHash *string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// UserUpdate is the allow-listed set of mutable user fields. Nil means
// "leave unchanged". Username is the only field a user may change on their
// own profile; role and status are admin-only. Secret-bearing fields have
// dedicated store operations and are deliberately absent here so they can
// never be smuggled through an update payload.
type UserUpdate struct {
	Username *string
	Role     *UserRole
	Status   *UserStatus
}

// Public returns a copy of the user with every secret-bearing field
// stripped. This is the only shape handed to callers outside the service
// layer.
func (u User) Public() User {
	u.PasswordHash = nil
	u.VerificationTokenHash = nil
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
	u.RefreshTokenHash = nil
	return u
}
