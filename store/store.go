// Package store provides the durable local persistence for the session
// lifecycle: the single session record, the active-session registry,
// and the device identity. All reads treat missing or malformed data
// as absent rather than failing the caller; corruption must never be
// fatal to lifecycle logic.
package store

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/models"
)

// Keys under which the scoped records are persisted.
const (
	KeyDeviceID = "device_id"
	KeySession  = "session"
	KeyRegistry = "active_sessions"
)

// Store is the scoped persistence contract. Writes are
// last-writer-wins; the store is single-client and does no
// cross-writer coordination.
type Store interface {
	// Session returns the stored session record, or (nil, nil) if it
	// is absent or unreadable.
	Session(ctx context.Context) (*models.SessionRecord, error)
	SaveSession(ctx context.Context, rec *models.SessionRecord) error
	ClearSession(ctx context.Context) error

	// Registry returns the active-session registry. Absent or
	// unreadable data yields an empty, non-nil map.
	Registry(ctx context.Context) (map[string]models.RegistryEntry, error)
	SaveRegistry(ctx context.Context, reg map[string]models.RegistryEntry) error

	// SaveLoginState writes the session record and the registry
	// together, atomically where the backend supports it, so a session
	// never lands without its device binding.
	SaveLoginState(ctx context.Context, rec *models.SessionRecord, reg map[string]models.RegistryEntry) error

	// DeviceID returns the persisted device identity, or "" if none.
	DeviceID(ctx context.Context) (string, error)
	SaveDeviceID(ctx context.Context, id string) error

	// Close releases underlying resources.
	Close() error
}
