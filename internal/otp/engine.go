// Package otp implements the phone challenge/response used to log in.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/e-ration/eration/internal/directory"
	"github.com/e-ration/eration/internal/notification"
)

var (
	// ErrInvalidInput is returned for codes that are not exactly six digits.
	ErrInvalidInput = errors.New("please enter a valid 6-digit OTP")
	// ErrNoPendingChallenge is returned when no usable challenge exists for the phone.
	ErrNoPendingChallenge = errors.New("no pending OTP for this number, please request a new one")
	// ErrCodeMismatch is returned in strict mode when the code is wrong.
	ErrCodeMismatch = errors.New("incorrect OTP")
	// ErrTooManyAttempts is returned when a challenge is burned by repeated wrong codes.
	ErrTooManyAttempts = errors.New("too many incorrect attempts, please request a new OTP")
)

// Mode selects how submitted codes are checked.
type Mode string

const (
	// ModeDemo accepts any six-digit code while a challenge is pending.
	ModeDemo Mode = "demo"
	// ModeStrict issues a random code and requires an exact match.
	ModeStrict Mode = "strict"
)

// State is the authentication state of a phone.
type State string

const (
	StateIdle            State = "idle"
	StateChallengeIssued State = "challenge_issued"
	StateVerified        State = "verified"
)

const (
	// CodeLength is the number of digits in an OTP.
	CodeLength      = 6
	defaultTTL      = 5 * time.Minute
	maxCodeAttempts = 5
)

// ChallengeResult is returned when a challenge was issued.
type ChallengeResult struct {
	MaskedPhone   string
	TransactionID string
	Record        directory.Record
	ExpiresAt     time.Time
}

// VerifyInput carries a verification attempt. TransactionID is optional; when
// set it must match the pending challenge so stale codes are rejected.
type VerifyInput struct {
	Phone         string
	Code          string
	TransactionID string
	// ProviderVerified skips the local code comparison because an external
	// national-ID provider already accepted the code.
	ProviderVerified bool
}

// VerifyResult is returned on successful verification.
type VerifyResult struct {
	State  State
	Record directory.Record
}

// Engine issues and verifies OTP challenges.
type Engine struct {
	dir      directory.Directory
	store    ChallengeStore
	notifier notification.Notifier
	logger   *zap.Logger
	mode     Mode
	ttl      time.Duration
	now      func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithMode selects the code checking mode.
func WithMode(m Mode) Option { return func(e *Engine) { e.mode = m } }

// WithTTL sets how long a challenge stays valid. Zero disables expiry.
func WithTTL(ttl time.Duration) Option { return func(e *Engine) { e.ttl = ttl } }

// WithNotifier sets the gateway used to deliver strict-mode codes.
func WithNotifier(n notification.Notifier) Option { return func(e *Engine) { e.notifier = n } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine builds an engine over a directory and a challenge store.
func NewEngine(dir directory.Directory, store ChallengeStore, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		dir:    dir,
		store:  store,
		logger: logger,
		mode:   ModeDemo,
		ttl:    defaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode reports the configured code checking mode.
func (e *Engine) Mode() Mode { return e.mode }

// LinkedIdentity previews the record linked to phone without touching any challenge.
func (e *Engine) LinkedIdentity(ctx context.Context, phone string) (directory.Record, error) {
	return e.dir.LookupByPhone(ctx, phone)
}

// RequestChallenge issues a new challenge for phone, superseding any earlier one.
func (e *Engine) RequestChallenge(ctx context.Context, phone string) (ChallengeResult, error) {
	rec, err := e.dir.LookupByPhone(ctx, phone)
	if err != nil {
		return ChallengeResult{}, err
	}

	now := e.now().UTC()
	c := Challenge{
		Phone:         directory.NationalNumber(phone),
		TransactionID: uuid.NewString(),
		IssuedAt:      now,
	}
	if e.ttl > 0 {
		c.ExpiresAt = now.Add(e.ttl)
	}

	var code string
	if e.mode == ModeStrict {
		code, err = generateCode()
		if err != nil {
			return ChallengeResult{}, err
		}
		c.CodeHash, err = bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return ChallengeResult{}, fmt.Errorf("hash otp: %w", err)
		}
	}

	if err := e.store.Put(ctx, c, e.ttl); err != nil {
		return ChallengeResult{}, err
	}

	masked := directory.MaskPhone(rec.Phone)
	if code != "" && e.notifier != nil {
		if err := e.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindOTP,
			Destination: rec.Phone,
			Body:        fmt.Sprintf("Your e-Ration login OTP is %s. It expires in %s.", code, e.ttl),
		}); err != nil {
			e.logger.Warn("otp delivery failed", zap.String("phone", masked), zap.Error(err))
		}
	}

	e.logger.Info("otp challenge issued",
		zap.String("phone", masked),
		zap.String("transaction_id", c.TransactionID),
		zap.String("mode", string(e.mode)),
	)

	return ChallengeResult{
		MaskedPhone:   masked,
		TransactionID: c.TransactionID,
		Record:        rec,
		ExpiresAt:     c.ExpiresAt,
	}, nil
}

// Pending returns the live challenge for phone.
func (e *Engine) Pending(ctx context.Context, phone string) (Challenge, error) {
	c, ok, err := e.store.Get(ctx, directory.NationalNumber(phone))
	if err != nil {
		return Challenge{}, err
	}
	if !ok || c.Expired(e.now()) {
		return Challenge{}, ErrNoPendingChallenge
	}
	return c, nil
}

// BindProviderTransaction records the external provider's transaction id on
// the pending challenge.
func (e *Engine) BindProviderTransaction(ctx context.Context, phone, providerTxnID string) error {
	c, err := e.Pending(ctx, phone)
	if err != nil {
		return err
	}
	c.ProviderTxnID = providerTxnID
	return e.store.Put(ctx, c, e.remaining(c))
}

// Status reports whether phone has a pending challenge.
func (e *Engine) Status(ctx context.Context, phone string) (State, error) {
	if _, err := e.Pending(ctx, phone); err != nil {
		if errors.Is(err, ErrNoPendingChallenge) {
			return StateIdle, nil
		}
		return "", err
	}
	return StateChallengeIssued, nil
}

// Verify checks a submitted code. On success the challenge is consumed.
func (e *Engine) Verify(ctx context.Context, in VerifyInput) (VerifyResult, error) {
	if !ValidCode(in.Code) {
		return VerifyResult{}, ErrInvalidInput
	}

	c, err := e.Pending(ctx, in.Phone)
	if err != nil {
		return VerifyResult{}, err
	}
	if in.TransactionID != "" && in.TransactionID != c.TransactionID {
		return VerifyResult{}, ErrNoPendingChallenge
	}

	if e.mode == ModeStrict && !in.ProviderVerified {
		if err := bcrypt.CompareHashAndPassword(c.CodeHash, []byte(in.Code)); err != nil {
			return VerifyResult{}, e.recordMiss(ctx, c)
		}
	}

	rec, err := e.dir.LookupByPhone(ctx, in.Phone)
	if err != nil {
		return VerifyResult{}, err
	}

	if err := e.store.Delete(ctx, c.Phone); err != nil {
		return VerifyResult{}, err
	}

	e.logger.Info("otp verified",
		zap.String("phone", directory.MaskPhone(rec.Phone)),
		zap.String("transaction_id", c.TransactionID),
	)
	return VerifyResult{State: StateVerified, Record: rec}, nil
}

func (e *Engine) recordMiss(ctx context.Context, c Challenge) error {
	c.Attempts++
	if c.Attempts >= maxCodeAttempts {
		if err := e.store.Delete(ctx, c.Phone); err != nil {
			return err
		}
		return ErrTooManyAttempts
	}
	if err := e.store.Put(ctx, c, e.remaining(c)); err != nil {
		return err
	}
	return ErrCodeMismatch
}

func (e *Engine) remaining(c Challenge) time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	left := c.ExpiresAt.Sub(e.now())
	if left < time.Second {
		left = time.Second
	}
	return left
}

// ValidCode reports whether code is exactly six ASCII digits.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
