package store

import (
	"context"
	"errors"
	"time"

	"github.com/tasklight/tasklight/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Organizations() Organizations
	Lists() Lists
	Tasks() Tasks
	AuditLogs() AuditLogs

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle multi-step writes (e.g. password reset).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the principal repository. All lookups exclude soft-deleted rows;
// a soft-deleted user is indistinguishable from an absent one.
type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email or username collides with a
	// live row.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByVerificationTokenHash resolves the signup verification
	// token by its fingerprint.
	GetUserByVerificationTokenHash(ctx context.Context, hash string) (domain.User, error)

	// GetUserByActiveResetTokenHash resolves a password reset token by its
	// fingerprint, only while its expiry lies after now.
	GetUserByActiveResetTokenHash(ctx context.Context, hash string, now time.Time) (domain.User, error)

	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// UpdateUser applies the allow-listed field set and bumps updated_at.
	UpdateUser(ctx context.Context, userID string, upd domain.UserUpdate) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// MarkEmailVerified sets the verified flag and clears the verification
	// token in one statement so the token can never validate twice.
	MarkEmailVerified(ctx context.Context, userID string) error

	// SetResetToken stores the reset token fingerprint and its expiry,
	// replacing any previous pair.
	SetResetToken(ctx context.Context, userID string, hash string, expiresAt time.Time) error

	// UpdatePasswordAndClearReset sets a new password hash and clears the
	// reset token pair in a single atomic statement.
	UpdatePasswordAndClearReset(ctx context.Context, userID string, newHash string) error

	// ClearExpiredResetTokens nulls reset pairs whose expiry has passed.
	// Housekeeping; correctness never depends on it because lookups filter
	// on expiry anyway.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)

	// SetRefreshTokenHash overwrites the single refresh slot, invalidating
	// any previously issued refresh token.
	SetRefreshTokenHash(ctx context.Context, userID string, hash string) error

	// SwapRefreshTokenHash rotates the refresh slot only if it still holds
	// oldHash. Returns false when a concurrent rotation won the race; the
	// per-row predicate is what serializes writers on the slot.
	SwapRefreshTokenHash(ctx context.Context, userID string, oldHash, newHash string) (bool, error)

	// ClearRefreshTokenHash empties the slot (logout).
	ClearRefreshTokenHash(ctx context.Context, userID string) error

	SoftDeleteUser(ctx context.Context, userID string) error
}

type Organizations interface {
	CreateOrganization(ctx context.Context, o domain.Organization) error
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)
	ListOrganizationsByOwner(ctx context.Context, ownerID string) ([]domain.Organization, error)
	UpdateOrganizationName(ctx context.Context, id, name string) error
	SoftDeleteOrganization(ctx context.Context, id string) error
}

type Lists interface {
	CreateList(ctx context.Context, l domain.List) error
	GetListByID(ctx context.Context, id string) (domain.List, error)
	ListListsByOwner(ctx context.Context, ownerID string) ([]domain.List, error)
	UpdateList(ctx context.Context, id string, upd domain.ListUpdate) error
	SoftDeleteList(ctx context.Context, id string) error
}

type Tasks interface {
	CreateTask(ctx context.Context, t domain.Task) error
	GetTaskByID(ctx context.Context, id string) (domain.Task, error)
	ListTasksByList(ctx context.Context, listID string) ([]domain.Task, error)
	UpdateTask(ctx context.Context, id string, upd domain.TaskUpdate, updatedBy string) error
	SoftDeleteTask(ctx context.Context, id string) error
}

// AuditLogs is append-only; there are no update or delete operations.
type AuditLogs interface {
	AppendAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListRecentAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error)
}
