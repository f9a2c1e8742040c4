package verifier

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/sessionkeeper/models"
)

// FallbackUser is one allow-list entry: a username, the bcrypt hash of
// its password, and the profile snapshot a degraded login yields.
type FallbackUser struct {
	Username     string
	PasswordHash []byte
	Profile      models.UserProfile
}

// Fallback is a small fixed allow-list used strictly for continuity of
// service while the remote authority is unreachable. It never stores
// plaintext passwords and is consulted only after the remote call has
// already failed with ErrUnreachable.
type Fallback struct {
	users map[string]FallbackUser
}

// NewFallback builds the allow-list. Later entries with a duplicate
// username overwrite earlier ones.
func NewFallback(users []FallbackUser) *Fallback {
	m := make(map[string]FallbackUser, len(users))
	for _, u := range users {
		m[u.Username] = u
	}
	return &Fallback{users: m}
}

// Authenticate verifies credentials against the allow-list. It returns
// ErrDenied on a wrong password or a disabled entry, and ErrUnreachable
// for unknown usernames: the list is not an authority on who does not
// exist, so an unknown user stays an outage, not a denial.
func (f *Fallback) Authenticate(username, password string) (*models.UserProfile, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, ErrUnreachable
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrDenied
	}
	if u.Profile.Status == models.StatusDisabled {
		return nil, ErrDisabled
	}

	profile := u.Profile
	return &profile, nil
}

// HashPassword produces a bcrypt hash suitable for a FallbackUser.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}
