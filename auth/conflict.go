package auth

import (
	"time"

	"github.com/dmitrijs2005/sessionkeeper/models"
)

// Decision is the conflict resolver's verdict on a login attempt.
type Decision struct {
	Allow bool

	// Reason is set on denial.
	Reason string

	// BoundDeviceID is the device currently holding the binding when
	// the attempt is denied.
	BoundDeviceID string

	// Remaining is the time until the denying binding expires.
	Remaining time.Duration

	// Purged reports whether expired entries were dropped from the
	// registry; the caller must persist the registry if so.
	Purged bool
}

// EvaluateConflict decides whether a login for username on deviceID may
// proceed. It first drops every registry entry whose expiry has
// passed (mutating reg in place), then applies the binding rule: no
// entry allows, the same device allows, any other device denies.
//
// There is deliberately no takeover path here. A denied login resolves
// only through the holding session's natural expiry or an explicit
// administrative force-logout.
func EvaluateConflict(username, deviceID string, reg map[string]models.RegistryEntry, now time.Time) Decision {
	var d Decision

	for user, entry := range reg {
		if entry.Expired(now) {
			delete(reg, user)
			d.Purged = true
		}
	}

	entry, ok := reg[username]
	if !ok {
		d.Allow = true
		return d
	}

	if entry.DeviceID == deviceID {
		// Same device re-authenticating.
		d.Allow = true
		return d
	}

	d.Reason = "active session on another device"
	d.BoundDeviceID = entry.DeviceID
	d.Remaining = entry.ExpiresAt.Sub(now)
	return d
}

// RemainingMinutes converts the decision's remaining time to whole
// minutes, rounded up, never below one: a denial always reports a
// positive wait.
func (d Decision) RemainingMinutes() int {
	min := int((d.Remaining + time.Minute - 1) / time.Minute)
	if min < 1 {
		min = 1
	}
	return min
}
