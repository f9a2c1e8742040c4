package store

import (
	"context"
	"maps"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/models"
)

// MemoryStore keeps all state in process memory. It backs tests and
// installations without a durable backend; losing it on restart only
// weakens device binding, never correctness.
type MemoryStore struct {
	mu       sync.RWMutex
	session  *models.SessionRecord
	registry map[string]models.RegistryEntry
	deviceID string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{registry: make(map[string]models.RegistryEntry)}
}

func (s *MemoryStore) Session(ctx context.Context) (*models.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, nil
	}
	rec := *s.session
	return &rec, nil
}

func (s *MemoryStore) SaveSession(ctx context.Context, rec *models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.session = &cp
	return nil
}

func (s *MemoryStore) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func (s *MemoryStore) Registry(ctx context.Context) (map[string]models.RegistryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg := make(map[string]models.RegistryEntry, len(s.registry))
	maps.Copy(reg, s.registry)
	return reg, nil
}

func (s *MemoryStore) SaveRegistry(ctx context.Context, reg map[string]models.RegistryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]models.RegistryEntry, len(reg))
	maps.Copy(cp, reg)
	s.registry = cp
	return nil
}

func (s *MemoryStore) SaveLoginState(ctx context.Context, rec *models.SessionRecord, reg map[string]models.RegistryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recCp := *rec
	s.session = &recCp
	regCp := make(map[string]models.RegistryEntry, len(reg))
	maps.Copy(regCp, reg)
	s.registry = regCp
	return nil
}

func (s *MemoryStore) DeviceID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceID, nil
}

func (s *MemoryStore) SaveDeviceID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceID = id
	return nil
}

func (s *MemoryStore) Close() error { return nil }
