package otp

import (
	"context"
	"time"
)

// Challenge is one in-flight OTP transaction, keyed by phone.
type Challenge struct {
	Phone         string    `json:"phone"`
	TransactionID string    `json:"transaction_id"`
	CodeHash      []byte    `json:"code_hash,omitempty"`
	ProviderTxnID string    `json:"provider_txn_id,omitempty"`
	Attempts      int       `json:"attempts"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the challenge is no longer usable at now.
func (c Challenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ChallengeStore holds at most one challenge per phone. Put replaces any
// existing challenge for the same phone.
type ChallengeStore interface {
	Put(ctx context.Context, c Challenge, ttl time.Duration) error
	Get(ctx context.Context, phone string) (Challenge, bool, error)
	Delete(ctx context.Context, phone string) error
}
