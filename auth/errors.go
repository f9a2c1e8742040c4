package auth

import (
	"errors"
	"fmt"
)

var (
	// Local validation errors. These never reach the network.
	ErrInvalidLoginFormat    = errors.New("invalid login format")
	ErrInvalidPasswordFormat = errors.New("invalid password format")

	// ErrAuthenticationFailed means credentials were explicitly
	// rejected, by the remote authority or by the degraded fallback.
	ErrAuthenticationFailed = errors.New("invalid login/password")

	// ErrAccountDisabled means the account exists but may not log in.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrSessionConflict is matched (via errors.Is) by ConflictError.
	ErrSessionConflict = errors.New("active session on another device")

	// ErrRemoteUnreachable means the remote authority could not be
	// asked and no fallback applied.
	ErrRemoteUnreachable = errors.New("remote verifier unreachable")

	// ErrSessionExpired marks a terminal local expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnauthorized guards admin-only operations.
	ErrUnauthorized = errors.New("unauthorized")
)

// ConflictError is the denial produced when the account is already
// bound to another device. MinutesLeft is how long until that binding
// expires naturally, rounded up so a nearly-expired session still
// reports at least one minute.
type ConflictError struct {
	Username    string
	DeviceID    string
	MinutesLeft int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("active session on another device, expires in %d min", e.MinutesLeft)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSessionConflict
}
