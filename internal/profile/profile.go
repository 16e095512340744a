// Package profile keeps the set of identities a device has verified and which
// one is currently active.
package profile

import (
	"errors"

	"github.com/e-ration/eration/internal/directory"
	"github.com/e-ration/eration/internal/entitlement"
)

var (
	ErrNoActiveSession     = errors.New("please log in first")
	ErrUnknownIdentity     = errors.New("identity is not part of this profile")
	ErrDuplicateIdentity   = errors.New("this national ID is already linked to your account")
	ErrCannotRemovePrimary = errors.New("the primary identity cannot be removed")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotActiveIdentity   = errors.New("only the active identity can be edited")
)

// Outcome describes what UpsertFromVerifiedIdentity did.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeAdded    Outcome = "added"
	OutcomeSwitched Outcome = "switched"
)

// Identity is one verified national-ID holder inside a profile.
type Identity struct {
	ID            string         `json:"id"`
	NationalID    string         `json:"national_id"`
	DisplayName   string         `json:"display_name"`
	PostalAddress string         `json:"postal_address"`
	Phone         string         `json:"phone"`
	Tier          directory.Tier `json:"tier"`
}

// Profile is the multi-identity state of one device.
type Profile struct {
	Primary  Identity   `json:"primary"`
	Linked   []Identity `json:"linked"`
	ActiveID string     `json:"active_id"`
}

// Members returns the primary identity followed by the linked ones.
func (p Profile) Members() []Identity {
	out := make([]Identity, 0, len(p.Linked)+1)
	out = append(out, p.Primary)
	return append(out, p.Linked...)
}

// Find returns the member with the given id.
func (p Profile) Find(id string) (Identity, bool) {
	for _, m := range p.Members() {
		if m.ID == id {
			return m, true
		}
	}
	return Identity{}, false
}

// FindByNationalID returns the member holding nationalID.
func (p Profile) FindByNationalID(nationalID string) (Identity, bool) {
	for _, m := range p.Members() {
		if m.NationalID == nationalID {
			return m, true
		}
	}
	return Identity{}, false
}

// Active returns the active member. A well-formed profile always has one.
func (p Profile) Active() Identity {
	if m, ok := p.Find(p.ActiveID); ok {
		return m
	}
	return p.Primary
}

// Result is returned by operations that change the active identity.
type Result struct {
	Outcome     Outcome                 `json:"outcome,omitempty"`
	Identity    Identity                `json:"identity"`
	Entitlement entitlement.Entitlement `json:"entitlement"`
}

func (p *Profile) clone() Profile {
	out := *p
	out.Linked = append(make([]Identity, 0, len(p.Linked)), p.Linked...)
	return out
}

func entitlementOf(id Identity) entitlement.Entitlement {
	return entitlement.ForTier(id.Tier)
}
