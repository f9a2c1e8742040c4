// Package models defines the data shapes shared by the session
// lifecycle components: the user profile snapshot, the single local
// session record, and the active-session registry entries.
package models

import "time"

// SessionRecord is the one session a client installation may hold.
// A record whose expiry has passed is treated as absent everywhere,
// whether or not it is still physically stored.
type SessionRecord struct {
	User      UserProfile `json:"user"`
	DeviceID  string      `json:"device_id"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	Token     string      `json:"token,omitempty"`
}

// Expired reports whether the record is past its expiry at the given
// instant. Expiry is inclusive: a record expiring exactly now is gone.
func (r *SessionRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// TimeLeft returns the remaining lifetime at the given instant,
// floored at zero.
func (r *SessionRecord) TimeLeft(now time.Time) time.Duration {
	left := r.ExpiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// RegistryEntry is the device binding the active-session registry
// holds per username: at most one device, with the binding's expiry.
type RegistryEntry struct {
	DeviceID  string    `json:"device_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the binding has lapsed at the given instant.
func (e *RegistryEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
