// Package verifier defines the remote authority the session lifecycle
// consults: authenticate credentials, confirm or deny session
// validity, and record or clear device bindings. The authority may be
// unreachable; the adapter normalizes every transport failure to
// ErrUnreachable so callers can tell "could not ask" apart from an
// explicit "no".
package verifier

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/models"
)

var (
	// ErrUnreachable means the authority could not be asked at all:
	// timeout, connection failure, or a broken response. Eligible for
	// degraded local fallback; never to be conflated with a denial.
	ErrUnreachable = errors.New("verifier unreachable")

	// ErrDenied is an explicit authentication denial.
	ErrDenied = errors.New("authentication denied")

	// ErrDisabled means the account exists but is disabled.
	ErrDisabled = errors.New("account disabled")
)

// AuthResult is a successful authentication: the profile snapshot, the
// server-assigned expiry (zero if the server left it to the client),
// and an opaque session token if one was issued.
type AuthResult struct {
	User      models.UserProfile
	ExpiresAt time.Time
	Token     string
}

// Verifier is the remote authority contract. Implementations must
// honor context deadlines; a timed-out call surfaces as ErrUnreachable.
type Verifier interface {
	// Authenticate checks credentials for the given device. Errors:
	// ErrDenied, ErrDisabled, ErrUnreachable (possibly wrapped).
	Authenticate(ctx context.Context, username, password, deviceID string) (*AuthResult, error)

	// CheckSession reports whether the server still considers the
	// session for (username, deviceID) valid. A false return with a
	// nil error is authoritative.
	CheckSession(ctx context.Context, username, deviceID string) (bool, error)

	// Logout tells the server the user's session ended.
	Logout(ctx context.Context, username string) error

	// ForceLogout marks the named user's session for server-side
	// invalidation regardless of device.
	ForceLogout(ctx context.Context, username string) error

	// Ping checks authority liveness.
	Ping(ctx context.Context) error
}
