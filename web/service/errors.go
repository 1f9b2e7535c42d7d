package service

import "errors"

// Sentinel errors surfaced to the web layer. Controllers map these onto
// user-facing messages; none of them carry internal detail.
var (
	// ErrDuplicateIdentity is returned when registration collides with an
	// existing email or username.
	ErrDuplicateIdentity = errors.New("an account with this email or username already exists")

	// ErrInvalidCredentials is returned for any failed login. Unknown email
	// and wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownRole is returned when a role name resolves to nothing.
	ErrUnknownRole = errors.New("unknown role")

	// ErrRoleInUse rejects deletion of a role still referenced by users.
	ErrRoleInUse = errors.New("role is referenced by existing users")

	// ErrNotFound is returned for missing posts and comments.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateTitle rejects a post whose title is already taken.
	ErrDuplicateTitle = errors.New("a post with this title already exists")

	// ErrDeliveryFailed is returned when the contact mail could not be
	// handed to the relay.
	ErrDeliveryFailed = errors.New("message could not be delivered")
)
