// Package directory resolves phone numbers and national identity numbers to
// enrolled citizen records.
package directory

import (
	"context"
	"errors"
)

// Tier is the plan classification attached to a directory record.
type Tier string

const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierBasic || t == TierPremium
}

// ErrNotFound is returned when no record is linked to the queried key.
var ErrNotFound = errors.New("not linked to any ration card")

// Record is a national-ID enrolment as published by the directory.
type Record struct {
	NationalID    string `json:"national_id"`
	DisplayName   string `json:"display_name"`
	PostalAddress string `json:"postal_address"`
	Phone         string `json:"phone"`
	Tier          Tier   `json:"tier"`
}

// Directory is the read-only lookup used before and during authentication.
type Directory interface {
	LookupByPhone(ctx context.Context, phone string) (Record, error)
	LookupByNationalID(ctx context.Context, nationalID string) (Record, error)
}
