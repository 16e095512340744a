package profile

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/directory"
	"github.com/e-ration/eration/internal/entitlement"
	"github.com/e-ration/eration/internal/nationalid"
	"github.com/e-ration/eration/internal/otp"
	"github.com/e-ration/eration/internal/storage"
)

// Store owns the profile of a single device. The document is read from
// storage once; after that the in-memory copy is authoritative and every
// mutation is written through.
type Store struct {
	mu              sync.Mutex
	current         *Profile
	dir             directory.Directory
	docs            storage.Adapter
	logger          *zap.Logger
	requireChecksum bool
	newID           func() string
}

// Option customises a Store.
type Option func(*Store)

// WithChecksum rejects national IDs that fail the Verhoeff check when linking.
func WithChecksum(required bool) Option {
	return func(s *Store) { s.requireChecksum = required }
}

// NewStore builds a profile store persisting into docs, which is expected to
// be scoped to one device.
func NewStore(dir directory.Directory, docs storage.Adapter, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		docs:   docs,
		logger: logger,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile returns a copy of the current profile.
func (s *Store) Profile(ctx context.Context) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.load(ctx)
	if p == nil {
		return Profile{}, false
	}
	return p.clone(), true
}

// Active returns the active identity.
func (s *Store) Active(ctx context.Context) (Identity, error) {
	p, ok := s.Profile(ctx)
	if !ok {
		return Identity{}, ErrNoActiveSession
	}
	return p.Active(), nil
}

// Entitlement resolves the active identity's entitlement.
func (s *Store) Entitlement(ctx context.Context) (entitlement.Entitlement, error) {
	id, err := s.Active(ctx)
	if err != nil {
		return entitlement.Entitlement{}, err
	}
	return entitlementOf(id), nil
}

// UpsertFromVerifiedIdentity records a freshly verified directory record and
// makes it active. A national ID already in the profile is switched to, never
// duplicated.
func (s *Store) UpsertFromVerifiedIdentity(ctx context.Context, rec directory.Record) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(ctx)
	var (
		active  Identity
		outcome Outcome
	)
	switch {
	case p == nil:
		active = s.fromRecord(rec)
		p = &Profile{Primary: active, Linked: []Identity{}, ActiveID: active.ID}
		outcome = OutcomeCreated
	default:
		if existing, ok := p.FindByNationalID(rec.NationalID); ok {
			active = existing
			outcome = OutcomeSwitched
		} else {
			active = s.fromRecord(rec)
			p.Linked = append(p.Linked, active)
			outcome = OutcomeAdded
		}
		p.ActiveID = active.ID
	}

	s.save(ctx, p)
	s.logger.Info("profile upsert",
		zap.String("outcome", string(outcome)),
		zap.String("identity_id", active.ID),
	)
	return Result{Outcome: outcome, Identity: active, Entitlement: entitlementOf(active)}, nil
}

// SwitchActive makes identityID the active identity.
func (s *Store) SwitchActive(ctx context.Context, identityID string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(ctx)
	if p == nil {
		return Result{}, ErrNoActiveSession
	}
	target, ok := p.Find(identityID)
	if !ok {
		return Result{}, ErrUnknownIdentity
	}
	p.ActiveID = target.ID
	s.save(ctx, p)
	return Result{Outcome: OutcomeSwitched, Identity: target, Entitlement: entitlementOf(target)}, nil
}

// AddLinkedIdentity links another national ID to the profile without making
// it active. code must be six digits.
func (s *Store) AddLinkedIdentity(ctx context.Context, nationalID, code string) (Identity, error) {
	nationalID = strings.TrimSpace(nationalID)

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(ctx)
	if p == nil {
		return Identity{}, ErrNoActiveSession
	}
	if !otp.ValidCode(code) || !nationalid.ValidFormat(nationalID) {
		return Identity{}, ErrInvalidInput
	}
	if s.requireChecksum && !nationalid.Validate(nationalID) {
		return Identity{}, ErrInvalidInput
	}
	if _, ok := p.FindByNationalID(nationalID); ok {
		return Identity{}, ErrDuplicateIdentity
	}

	rec, err := s.dir.LookupByNationalID(ctx, nationalID)
	if err != nil {
		return Identity{}, err
	}

	added := s.fromRecord(rec)
	p.Linked = append(p.Linked, added)
	s.save(ctx, p)
	s.logger.Info("identity linked", zap.String("identity_id", added.ID))
	return added, nil
}

// RemoveIdentity unlinks identityID. Removing the active identity falls back
// to the primary.
func (s *Store) RemoveIdentity(ctx context.Context, identityID string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(ctx)
	if p == nil {
		return Result{}, ErrNoActiveSession
	}
	if identityID == p.Primary.ID {
		return Result{}, ErrCannotRemovePrimary
	}

	idx := -1
	for i, m := range p.Linked {
		if m.ID == identityID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{}, ErrUnknownIdentity
	}
	p.Linked = append(p.Linked[:idx], p.Linked[idx+1:]...)
	if p.ActiveID == identityID {
		p.ActiveID = p.Primary.ID
	}

	s.save(ctx, p)
	active := p.Active()
	return Result{Identity: active, Entitlement: entitlementOf(active)}, nil
}

// UpdateDetails edits the display name and postal address of the active
// identity.
func (s *Store) UpdateDetails(ctx context.Context, identityID, displayName, postalAddress string) (Identity, error) {
	displayName = strings.TrimSpace(displayName)
	postalAddress = strings.TrimSpace(postalAddress)
	if displayName == "" || postalAddress == "" {
		return Identity{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(ctx)
	if p == nil {
		return Identity{}, ErrNoActiveSession
	}
	if _, ok := p.Find(identityID); !ok {
		return Identity{}, ErrUnknownIdentity
	}
	if identityID != p.ActiveID {
		return Identity{}, ErrNotActiveIdentity
	}

	update := func(id *Identity) {
		id.DisplayName = displayName
		id.PostalAddress = postalAddress
	}
	if p.Primary.ID == identityID {
		update(&p.Primary)
	}
	for i := range p.Linked {
		if p.Linked[i].ID == identityID {
			update(&p.Linked[i])
		}
	}

	s.save(ctx, p)
	return p.Active(), nil
}

// Clear drops the profile and every document persisted for the device.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	if err := storage.Clear(ctx, s.docs); err != nil {
		s.logger.Warn("profile clear incomplete", zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) fromRecord(rec directory.Record) Identity {
	return Identity{
		ID:            s.newID(),
		NationalID:    rec.NationalID,
		DisplayName:   rec.DisplayName,
		PostalAddress: rec.PostalAddress,
		Phone:         rec.Phone,
		Tier:          rec.Tier,
	}
}

// load returns a working copy of the profile, reading storage only when
// nothing is held in memory. Missing or unreadable documents yield nil.
func (s *Store) load(ctx context.Context) *Profile {
	if s.current != nil {
		p := s.current.clone()
		return &p
	}
	var p Profile
	ok, err := s.docs.Load(ctx, storage.KeyProfile, &p)
	if err != nil {
		s.logger.Warn("profile unreadable, treating as logged out", zap.Error(err))
		return nil
	}
	if !ok || p.Primary.ID == "" {
		return nil
	}
	if p.Linked == nil {
		p.Linked = []Identity{}
	}
	if _, found := p.Find(p.ActiveID); !found {
		p.ActiveID = p.Primary.ID
	}
	held := p.clone()
	s.current = &held
	return &p
}

// save makes p current and writes it through. A failed write is logged; the
// in-memory profile stays current so the session keeps working.
func (s *Store) save(ctx context.Context, p *Profile) {
	held := p.clone()
	s.current = &held
	if err := s.docs.Save(ctx, storage.KeyProfile, p); err != nil {
		s.logger.Error("profile save failed", zap.Error(err))
	}
}
