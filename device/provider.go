// Package device produces and persists the stable per-installation
// identifier that sessions are bound to.
package device

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/sessionkeeper/logging"
	"github.com/dmitrijs2005/sessionkeeper/store"
)

// Provider hands out the installation's device identity. The identity
// is generated once, persisted, and never regenerated unless the
// backing store is wiped externally.
type Provider struct {
	store store.Store
	log   logging.Logger

	mu     sync.Mutex
	cached string

	now func() time.Time
}

func NewProvider(s store.Store, log logging.Logger) *Provider {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Provider{store: s, log: log, now: time.Now}
}

// DeviceID returns the persisted identifier, generating and persisting
// a fresh one on first use. It never fails: if the store cannot be
// read or written, the identifier lives for the process lifetime only,
// which merely weakens device binding.
func (p *Provider) DeviceID(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached
	}

	id, err := p.store.DeviceID(ctx)
	if err != nil {
		p.log.Warn(ctx, "device id read failed, using process-lifetime id", "error", err)
	}
	if id != "" {
		p.cached = id
		return id
	}

	id = p.generate()
	if err := p.store.SaveDeviceID(ctx, id); err != nil {
		p.log.Warn(ctx, "device id persist failed, using process-lifetime id", "error", err)
	} else {
		p.log.Info(ctx, "new device registered", "device_id", id)
	}

	p.cached = id
	return id
}

// generate builds a time-seeded, high-entropy identifier. Collisions
// are negligible for any realistic fleet size.
func (p *Provider) generate() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("device_%d_%s", p.now().UnixMilli(), suffix)
}
