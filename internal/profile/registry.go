package profile

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/directory"
	"github.com/e-ration/eration/internal/storage"
)

// DefaultIdleTimeout matches the default session lifetime.
const DefaultIdleTimeout = 12 * time.Hour

type registryEntry struct {
	store    *Store
	lastUsed time.Time
}

// Registry hands out one Store per device so writes for a device serialise on
// the same mutex. Stores idle for longer than the idle timeout are dropped;
// the next use reloads the device from storage.
type Registry struct {
	mu        sync.Mutex
	dir       directory.Directory
	backend   storage.Adapter
	logger    *zap.Logger
	opts      []Option
	stores    map[string]*registryEntry
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRegistry builds a registry whose stores persist into backend under a
// per-device namespace.
func NewRegistry(dir directory.Directory, backend storage.Adapter, logger *zap.Logger, opts ...Option) *Registry {
	return &Registry{
		dir:     dir,
		backend: backend,
		logger:  logger,
		opts:    opts,
		stores:  make(map[string]*registryEntry),
		idle:    DefaultIdleTimeout,
		now:     time.Now,
	}
}

// SetIdleTimeout changes how long an unused Store is kept.
func (r *Registry) SetIdleTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > 0 {
		r.idle = d
	}
}

// For returns the store of deviceID, creating it on first use.
func (r *Registry) For(deviceID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweep(now)
	if e, ok := r.stores[deviceID]; ok {
		e.lastUsed = now
		return e.store
	}
	s := NewStore(r.dir, r.Documents(deviceID), r.logger.With(zap.String("device_id", deviceID)), r.opts...)
	r.stores[deviceID] = &registryEntry{store: s, lastUsed: now}
	return s
}

// sweep drops idle stores. It runs at most once per idle period.
func (r *Registry) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < r.idle {
		return
	}
	r.lastSweep = now
	for id, e := range r.stores {
		if now.Sub(e.lastUsed) >= r.idle {
			delete(r.stores, id)
		}
	}
}

// Documents returns the device-scoped document adapter shared by every
// per-device component.
func (r *Registry) Documents(deviceID string) storage.Adapter {
	return storage.Scoped(r.backend, deviceID)
}

// Forget drops the cached store of deviceID after logout.
func (r *Registry) Forget(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, deviceID)
}
