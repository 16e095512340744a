// Package uidai talks to the national-ID authentication service. Callers must
// treat every error as a signal to fall back to the directory-backed demo flow.
package uidai

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned while credentials are empty or placeholders.
	ErrNotConfigured = errors.New("uidai: provider not configured")
	// ErrInvalidNationalID is returned for numbers failing the format or checksum test.
	ErrInvalidNationalID = errors.New("uidai: invalid national ID")
	// ErrRejected is returned when the service answers with a non-success status.
	ErrRejected = errors.New("uidai: request rejected")
	// ErrUnavailable wraps transport and decoding failures.
	ErrUnavailable = errors.New("uidai: service unavailable")
)

// Holder is the demographic data returned on a successful verification.
type Holder struct {
	Name    string `json:"name"`
	DOB     string `json:"dob"`
	Gender  string `json:"gender"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Challenge identifies an OTP issued by the provider.
type Challenge struct {
	TxnID   string
	Message string
}

// Verification is the provider's answer to a submitted OTP.
type Verification struct {
	TxnID   string
	Message string
	Holder  *Holder
}

// Provider issues and verifies national-ID OTPs.
type Provider interface {
	GenerateChallenge(ctx context.Context, nationalID string) (Challenge, error)
	VerifyChallenge(ctx context.Context, nationalID, code, txnID string) (Verification, error)
}

// Disabled is the Provider used when no credentials are configured.
type Disabled struct{}

func (Disabled) GenerateChallenge(context.Context, string) (Challenge, error) {
	return Challenge{}, ErrNotConfigured
}

func (Disabled) VerifyChallenge(context.Context, string, string, string) (Verification, error) {
	return Verification{}, ErrNotConfigured
}
