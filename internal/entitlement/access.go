package entitlement

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/storage"
)

// ErrNotEntitled is returned when enabling access for a basic-tier identity.
var ErrNotEntitled = errors.New("internet access requires a premium plan")

const (
	dataLimitGB  = 100
	planValidity = 30 * 24 * time.Hour
)

// Usage summarises the internet plan of an identity.
type Usage struct {
	Enabled     bool   `json:"enabled"`
	DataUsedGB  int    `json:"data_used_gb"`
	DataLimitGB int    `json:"data_limit_gb"`
	ValidUntil  string `json:"valid_until"`
	Plan        string `json:"plan"`
}

// AccessManager tracks the per-identity internet access switch.
type AccessManager struct {
	store  storage.Adapter
	logger *zap.Logger
	now    func() time.Time
}

// NewAccessManager builds a manager persisting to store.
func NewAccessManager(store storage.Adapter, logger *zap.Logger) *AccessManager {
	return &AccessManager{store: store, logger: logger, now: time.Now}
}

// Check reports whether access is enabled for nationalID. Storage failures
// read as disabled.
func (m *AccessManager) Check(ctx context.Context, nationalID string) bool {
	return m.load(ctx)[nationalID]
}

// Enable switches access on. The caller's entitlement must be elevated.
func (m *AccessManager) Enable(ctx context.Context, nationalID string, ent Entitlement) error {
	if !ent.HasElevatedAccess {
		return ErrNotEntitled
	}
	return m.set(ctx, nationalID, true)
}

// Disable switches access off.
func (m *AccessManager) Disable(ctx context.Context, nationalID string) error {
	return m.set(ctx, nationalID, false)
}

// Usage returns plan statistics. Usage figures are simulated until a carrier
// integration exists.
func (m *AccessManager) Usage(ctx context.Context, nationalID string, ent Entitlement) Usage {
	plan := "Basic"
	if ent.HasElevatedAccess {
		plan = "Premium"
	}
	return Usage{
		Enabled:     m.Check(ctx, nationalID),
		DataUsedGB:  10 + rand.IntN(80),
		DataLimitGB: dataLimitGB,
		ValidUntil:  m.now().Add(planValidity).UTC().Format(time.DateOnly),
		Plan:        plan,
	}
}

func (m *AccessManager) load(ctx context.Context) map[string]bool {
	status := map[string]bool{}
	if _, err := m.store.Load(ctx, storage.KeyInternetAccess, &status); err != nil {
		m.logger.Warn("internet access status unreadable", zap.Error(err))
		return map[string]bool{}
	}
	return status
}

func (m *AccessManager) set(ctx context.Context, nationalID string, enabled bool) error {
	status := m.load(ctx)
	status[nationalID] = enabled
	if err := m.store.Save(ctx, storage.KeyInternetAccess, status); err != nil {
		return fmt.Errorf("save internet access: %w", err)
	}
	m.logger.Info("internet access updated", zap.String("national_id", nationalID), zap.Bool("enabled", enabled))
	return nil
}
