// Package rationcard holds the ration cards of the identities on a device.
package rationcard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/nationalid"
	"github.com/e-ration/eration/internal/storage"
)

var (
	ErrNotFound         = errors.New("no ration card linked to this identity")
	ErrMemberNotFound   = errors.New("family member not found")
	ErrDuplicateMember  = errors.New("family member is already on this card")
	ErrCannotRemoveHead = errors.New("the head of family cannot be removed")
	ErrInvalidMember    = errors.New("invalid family member")
	ErrInvalidCard      = errors.New("invalid ration card")
)

// CardType is the economic category of a card.
type CardType string

const (
	CardAPL CardType = "APL"
	CardBPL CardType = "BPL"
	CardAAY CardType = "AAY"
)

func (t CardType) Valid() bool {
	return t == CardAPL || t == CardBPL || t == CardAAY
}

const RelationHead = "Head of Family"

type FamilyMember struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Relation   string `json:"relation"`
	NationalID string `json:"national_id"`
}

// Quota is the monthly allowance in kilograms, kerosene in litres.
type Quota struct {
	Rice     float64 `json:"rice"`
	Wheat    float64 `json:"wheat"`
	Sugar    float64 `json:"sugar"`
	Kerosene float64 `json:"kerosene"`
}

type Card struct {
	ID            string         `json:"id"`
	CardNumber    string         `json:"card_number"`
	CardType      CardType       `json:"card_type"`
	NationalID    string         `json:"national_id"`
	IssuedDate    string         `json:"issued_date"`
	ValidUntil    string         `json:"valid_until"`
	FamilyMembers []FamilyMember `json:"family_members"`
	MonthlyQuota  Quota          `json:"monthly_quota"`
}

// Registry is the card list of one device.
type Registry struct {
	mu     sync.Mutex
	store  storage.Adapter
	logger *zap.Logger
	seed   func() []Card
}

// NewRegistry builds a registry persisting to store. Until something is saved
// the demo cards are served.
func NewRegistry(store storage.Adapter, logger *zap.Logger) *Registry {
	return &Registry{store: store, logger: logger, seed: DemoCards}
}

// List returns every card.
func (r *Registry) List(ctx context.Context) []Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// ForNationalID returns the card held by nationalID.
func (r *Registry) ForNationalID(ctx context.Context, nationalID string) (Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cards := r.load(ctx)
	i := indexByHolder(cards, nationalID)
	if i < 0 {
		return Card{}, ErrNotFound
	}
	return cards[i], nil
}

// Update replaces the card with the same id.
func (r *Registry) Update(ctx context.Context, card Card) (Card, error) {
	if !card.CardType.Valid() || card.ID == "" {
		return Card{}, ErrInvalidCard
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cards := r.load(ctx)
	for i := range cards {
		if cards[i].ID == card.ID {
			cards[i] = card
			return card, r.save(ctx, cards)
		}
	}
	return Card{}, ErrNotFound
}

// AddFamilyMember appends a member to the card held by holderID.
func (r *Registry) AddFamilyMember(ctx context.Context, holderID string, m FamilyMember) (FamilyMember, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Relation = strings.TrimSpace(m.Relation)
	if m.Name == "" || m.Relation == "" || m.Age < 0 || m.Age > 150 || !nationalid.ValidFormat(m.NationalID) {
		return FamilyMember{}, ErrInvalidMember
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cards := r.load(ctx)
	i := indexByHolder(cards, holderID)
	if i < 0 {
		return FamilyMember{}, ErrNotFound
	}
	for _, existing := range cards[i].FamilyMembers {
		if existing.NationalID == m.NationalID {
			return FamilyMember{}, ErrDuplicateMember
		}
	}
	m.ID = uuid.NewString()
	cards[i].FamilyMembers = append(cards[i].FamilyMembers, m)
	return m, r.save(ctx, cards)
}

// RemoveFamilyMember deletes memberID from the card held by holderID.
func (r *Registry) RemoveFamilyMember(ctx context.Context, holderID, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cards := r.load(ctx)
	i := indexByHolder(cards, holderID)
	if i < 0 {
		return ErrNotFound
	}
	members := cards[i].FamilyMembers
	for j, m := range members {
		if m.ID != memberID {
			continue
		}
		if m.NationalID == cards[i].NationalID {
			return ErrCannotRemoveHead
		}
		cards[i].FamilyMembers = append(members[:j], members[j+1:]...)
		return r.save(ctx, cards)
	}
	return ErrMemberNotFound
}

func indexByHolder(cards []Card, nationalID string) int {
	for i, c := range cards {
		if c.NationalID == nationalID {
			return i
		}
	}
	return -1
}

func (r *Registry) load(ctx context.Context) []Card {
	var cards []Card
	ok, err := r.store.Load(ctx, storage.KeyRationCards, &cards)
	if err != nil {
		r.logger.Warn("ration cards unreadable, using defaults", zap.Error(err))
	}
	if !ok || err != nil || len(cards) == 0 {
		return r.seed()
	}
	return cards
}

func (r *Registry) save(ctx context.Context, cards []Card) error {
	if err := r.store.Save(ctx, storage.KeyRationCards, cards); err != nil {
		return fmt.Errorf("save ration cards: %w", err)
	}
	return nil
}
