package service

import "errors"

// Failure taxonomy surfaced to callers. Handlers map these onto HTTP
// status codes; everything else is treated as an internal error.
var (
	// ErrConflict reports a duplicate email or username among live accounts.
	ErrConflict = errors.New("email_or_username_taken")

	// ErrUnauthorized covers bad credentials and invalid or rotated
	// refresh tokens. Deliberately coarse so callers cannot distinguish
	// "no such account" from "wrong password".
	ErrUnauthorized = errors.New("invalid_credentials")

	// ErrInvalidToken reports a verification or reset token that does not
	// resolve or whose expiry has elapsed.
	ErrInvalidToken = errors.New("invalid_or_expired_token")

	// ErrForbidden reports an authenticated caller that does not own the
	// target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound reports a resource that is absent or soft-deleted. The
	// two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("not_found")

	// ErrInvalidInput reports a request that fails validation before it
	// reaches the store. Wrap it with detail: fmt.Errorf("%w: ...", ...).
	ErrInvalidInput = errors.New("invalid_input")
)
