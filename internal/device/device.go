// Package device groups the per-device components that share one document
// namespace.
package device

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/application"
	"github.com/e-ration/eration/internal/entitlement"
	"github.com/e-ration/eration/internal/notification"
	"github.com/e-ration/eration/internal/profile"
	"github.com/e-ration/eration/internal/rationcard"
)

// Workspace is everything a logged-in device can read and change.
type Workspace struct {
	Profile       *profile.Store
	RationCards   *rationcard.Registry
	Applications  *application.Tracker
	Notifications *notification.Feed
	Internet      *entitlement.AccessManager
}

type entry struct {
	ws       *Workspace
	lastUsed time.Time
}

// Manager caches the record components of each device and drops those left
// unused for longer than the idle timeout. The profile Store always comes
// from the registry.
type Manager struct {
	mu        sync.Mutex
	profiles  *profile.Registry
	logger    *zap.Logger
	spaces    map[string]*entry
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewManager(profiles *profile.Registry, logger *zap.Logger) *Manager {
	return &Manager{
		profiles: profiles,
		logger:   logger,
		spaces:   make(map[string]*entry),
		idle:     profile.DefaultIdleTimeout,
		now:      time.Now,
	}
}

// SetIdleTimeout changes how long an unused workspace is kept.
func (m *Manager) SetIdleTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.idle = d
	}
}

// For returns the workspace of deviceID.
func (m *Manager) For(deviceID string) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweep(now)
	if e, ok := m.spaces[deviceID]; ok {
		e.lastUsed = now
		return m.withProfile(e.ws, deviceID)
	}
	docs := m.profiles.Documents(deviceID)
	logger := m.logger.With(zap.String("device_id", deviceID))
	feed := notification.NewFeed(docs, logger)
	ws := &Workspace{
		RationCards:   rationcard.NewRegistry(docs, logger),
		Applications:  application.NewTracker(docs, feed, logger),
		Notifications: feed,
		Internet:      entitlement.NewAccessManager(docs, logger),
	}
	m.spaces[deviceID] = &entry{ws: ws, lastUsed: now}
	return m.withProfile(ws, deviceID)
}

// withProfile returns a copy of ws bound to the registry's current Store, so
// a workspace never outlives the Store the rest of the app sees.
func (m *Manager) withProfile(ws *Workspace, deviceID string) *Workspace {
	out := *ws
	out.Profile = m.profiles.For(deviceID)
	return &out
}

func (m *Manager) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.idle {
		return
	}
	m.lastSweep = now
	for id, e := range m.spaces {
		if now.Sub(e.lastUsed) >= m.idle {
			delete(m.spaces, id)
		}
	}
}

// Forget drops the cached workspace after logout.
func (m *Manager) Forget(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.spaces, deviceID)
}
