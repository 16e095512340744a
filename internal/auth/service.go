// Package auth orchestrates OTP login, device sessions and identity linking.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/directory"
	"github.com/e-ration/eration/internal/metrics"
	"github.com/e-ration/eration/internal/nationalid"
	"github.com/e-ration/eration/internal/otp"
	"github.com/e-ration/eration/internal/profile"
	"github.com/e-ration/eration/internal/uidai"
)

// Service is the login entry point used by the HTTP layer.
type Service struct {
	engine   *otp.Engine
	profiles *profile.Registry
	provider uidai.Provider
	tokens   *Tokens
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewService(engine *otp.Engine, profiles *profile.Registry, provider uidai.Provider, tokens *Tokens, m *metrics.Metrics, logger *zap.Logger) *Service {
	if provider == nil {
		provider = uidai.Disabled{}
	}
	return &Service{
		engine:   engine,
		profiles: profiles,
		provider: provider,
		tokens:   tokens,
		metrics:  m,
		logger:   logger,
	}
}

// Preview is the identity shown for confirmation before an OTP is sent.
type Preview struct {
	NationalID  string         `json:"national_id"`
	MaskedPhone string         `json:"masked_phone"`
	Tier        directory.Tier `json:"tier"`
}

// LoginChallenge is returned once an OTP has been issued.
type LoginChallenge struct {
	MaskedPhone   string         `json:"masked_phone"`
	Tier          directory.Tier `json:"tier"`
	TransactionID string         `json:"transaction_id"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
}

// Session is returned after a successful login.
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	DeviceID  string         `json:"device_id"`
	Result    profile.Result `json:"result"`
}

// CompleteInput carries the second login step.
type CompleteInput struct {
	DeviceID      string
	Phone         string
	Code          string
	TransactionID string
}

// Lookup resolves the identity linked to phone without issuing a challenge.
func (s *Service) Lookup(ctx context.Context, phone string) (Preview, error) {
	rec, err := s.engine.LinkedIdentity(ctx, phone)
	if err != nil {
		return Preview{}, err
	}
	return Preview{
		NationalID:  nationalid.Format(rec.NationalID),
		MaskedPhone: directory.MaskPhone(rec.Phone),
		Tier:        rec.Tier,
	}, nil
}

// StartLogin issues an OTP challenge for phone. When the national-ID provider
// is reachable its transaction is bound to the challenge; any provider error
// leaves the local challenge in place.
func (s *Service) StartLogin(ctx context.Context, phone string) (LoginChallenge, error) {
	ch, err := s.engine.RequestChallenge(ctx, phone)
	if err != nil {
		return LoginChallenge{}, err
	}
	s.metrics.IncrementChallenges()

	pc, err := s.provider.GenerateChallenge(ctx, ch.Record.NationalID)
	if err != nil {
		s.fallback("generate", err)
	} else if err := s.engine.BindProviderTransaction(ctx, phone, pc.TxnID); err != nil {
		return LoginChallenge{}, err
	}

	out := LoginChallenge{
		MaskedPhone:   ch.MaskedPhone,
		Tier:          ch.Record.Tier,
		TransactionID: ch.TransactionID,
	}
	if !ch.ExpiresAt.IsZero() {
		exp := ch.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out, nil
}

// CompleteLogin verifies the code, upserts the identity into the device
// profile and issues a session token. DeviceID must come from an
// authenticated session; an empty one starts a new device.
func (s *Service) CompleteLogin(ctx context.Context, in CompleteInput) (Session, error) {
	if !otp.ValidCode(in.Code) {
		s.metrics.ObserveVerification("invalid_input")
		return Session{}, otp.ErrInvalidInput
	}

	verifyIn := otp.VerifyInput{Phone: in.Phone, Code: in.Code, TransactionID: in.TransactionID}
	if pending, err := s.engine.Pending(ctx, in.Phone); err == nil && pending.ProviderTxnID != "" {
		verifyIn.ProviderVerified = s.verifyWithProvider(ctx, in.Phone, in.Code, pending.ProviderTxnID)
	}

	verified, err := s.engine.Verify(ctx, verifyIn)
	if err != nil {
		s.metrics.ObserveVerification(outcomeOf(err))
		return Session{}, err
	}
	s.metrics.ObserveVerification("success")

	deviceID := in.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	res, err := s.profiles.For(deviceID).UpsertFromVerifiedIdentity(ctx, verified.Record)
	if err != nil {
		return Session{}, err
	}
	s.metrics.ObserveProfileMutation("upsert_" + string(res.Outcome))

	token, exp, err := s.tokens.Issue(deviceID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, DeviceID: deviceID, Result: res}, nil
}

func (s *Service) verifyWithProvider(ctx context.Context, phone, code, txnID string) bool {
	rec, err := s.engine.LinkedIdentity(ctx, phone)
	if err != nil {
		return false
	}
	if _, err := s.provider.VerifyChallenge(ctx, rec.NationalID, code, txnID); err != nil {
		s.fallback("verify", err)
		return false
	}
	return true
}

// AddLinked links another national ID to the device profile.
func (s *Service) AddLinked(ctx context.Context, deviceID, nationalID, code string) (profile.Identity, error) {
	id, err := s.profiles.For(deviceID).AddLinkedIdentity(ctx, nationalID, code)
	if err != nil {
		return profile.Identity{}, err
	}
	s.metrics.ObserveProfileMutation("link")
	return id, nil
}

// Authenticate validates a session token and returns its device id. Tokens
// of devices that have logged out are rejected.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return "", err
	}
	if _, ok := s.profiles.For(claims.DeviceID).Profile(ctx); !ok {
		return "", profile.ErrNoActiveSession
	}
	return claims.DeviceID, nil
}

// Logout clears every document of the device.
func (s *Service) Logout(ctx context.Context, deviceID string) error {
	err := s.profiles.For(deviceID).Clear(ctx)
	s.profiles.Forget(deviceID)
	if err != nil {
		return err
	}
	s.metrics.ObserveProfileMutation("clear")
	s.logger.Info("device logged out", zap.String("device_id", deviceID))
	return nil
}

func (s *Service) fallback(stage string, err error) {
	s.metrics.IncrementProviderFallback(stage)
	if errors.Is(err, uidai.ErrNotConfigured) {
		s.logger.Debug("uidai not configured, using demo flow", zap.String("stage", stage))
		return
	}
	s.logger.Warn("uidai failed, using demo flow", zap.String("stage", stage), zap.Error(err))
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, otp.ErrNoPendingChallenge):
		return "no_challenge"
	case errors.Is(err, otp.ErrCodeMismatch):
		return "mismatch"
	case errors.Is(err, otp.ErrTooManyAttempts):
		return "locked"
	default:
		return "error"
	}
}
