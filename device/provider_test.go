package device

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sessionkeeper/models"
	"github.com/dmitrijs2005/sessionkeeper/store"
)

// brokenStore fails every operation, simulating an installation with
// no usable persistence backing.
type brokenStore struct{}

var errBroken = errors.New("storage broken")

func (brokenStore) Session(ctx context.Context) (*models.SessionRecord, error) {
	return nil, errBroken
}
func (brokenStore) SaveSession(ctx context.Context, rec *models.SessionRecord) error {
	return errBroken
}
func (brokenStore) ClearSession(ctx context.Context) error { return errBroken }
func (brokenStore) Registry(ctx context.Context) (map[string]models.RegistryEntry, error) {
	return nil, errBroken
}
func (brokenStore) SaveRegistry(ctx context.Context, reg map[string]models.RegistryEntry) error {
	return errBroken
}
func (brokenStore) SaveLoginState(ctx context.Context, rec *models.SessionRecord, reg map[string]models.RegistryEntry) error {
	return errBroken
}
func (brokenStore) DeviceID(ctx context.Context) (string, error) { return "", errBroken }
func (brokenStore) SaveDeviceID(ctx context.Context, id string) error {
	return errBroken
}
func (brokenStore) Close() error { return nil }

func TestDeviceID_StableAcrossCalls(t *testing.T) {
	p := NewProvider(store.NewMemoryStore(), nil)
	ctx := context.Background()

	first := p.DeviceID(ctx)
	second := p.DeviceID(ctx)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "device_"))
}

func TestDeviceID_PersistedAcrossProviders(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	first := NewProvider(s, nil).DeviceID(ctx)
	second := NewProvider(s, nil).DeviceID(ctx)

	assert.Equal(t, first, second, "a new provider over the same store must see the same identity")
}

func TestDeviceID_ReturnsExistingID(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.SaveDeviceID(ctx, "device_legacy"))

	assert.Equal(t, "device_legacy", NewProvider(s, nil).DeviceID(ctx))
}

func TestDeviceID_BrokenStoreDegradesToProcessLifetime(t *testing.T) {
	p := NewProvider(brokenStore{}, nil)
	ctx := context.Background()

	first := p.DeviceID(ctx)
	second := p.DeviceID(ctx)

	require.NotEmpty(t, first, "provider never fails")
	assert.Equal(t, first, second, "identity stays stable for the process lifetime")
}

func TestDeviceID_DistinctInstallationsGetDistinctIDs(t *testing.T) {
	ctx := context.Background()

	a := NewProvider(store.NewMemoryStore(), nil).DeviceID(ctx)
	b := NewProvider(store.NewMemoryStore(), nil).DeviceID(ctx)

	assert.NotEqual(t, a, b)
}
