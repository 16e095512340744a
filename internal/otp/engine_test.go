package otp

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/directory"
	"github.com/e-ration/eration/internal/notification"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (c *captureNotifier) Send(_ context.Context, m notification.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, m)
	return nil
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func (c *captureNotifier) lastCode(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent)
	m := codePattern.FindStringSubmatch(c.sent[len(c.sent)-1].Body)
	require.Len(t, m, 2)
	return m[1]
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(directory.NewDemo(), NewMemoryStore(), zap.NewNop(), opts...)
}

func TestRequestChallengeReturnsMaskedPhone(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	res, err := e.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "+91 ******3210", res.MaskedPhone)
	assert.Equal(t, directory.TierPremium, res.Record.Tier)
	assert.NotEmpty(t, res.TransactionID)

	state, err := e.Status(ctx, "+91 98765 43210")
	require.NoError(t, err)
	assert.Equal(t, StateChallengeIssued, state)
}

func TestRequestChallengeUnknownPhone(t *testing.T) {
	e := newTestEngine()

	_, err := e.RequestChallenge(context.Background(), "1111111111")
	require.ErrorIs(t, err, directory.ErrNotFound)

	state, err := e.Status(context.Background(), "1111111111")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
}

func TestVerifyDemoModeAcceptsAnySixDigits(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	_, err := e.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)

	res, err := e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: "000000"})
	require.NoError(t, err)
	assert.Equal(t, StateVerified, res.State)
	assert.Equal(t, "Rajesh Kumar", res.Record.DisplayName)

	// Single use.
	_, err = e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: "000000"})
	require.ErrorIs(t, err, ErrNoPendingChallenge)
}

func TestVerifyRejectsMalformedCodeBeforeChallengeLookup(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	for _, code := range []string{"", "12345", "1234567", "12a456", " 12345", "１２３４５６"} {
		_, err := e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: code})
		require.ErrorIs(t, err, ErrInvalidInput, code)
	}
}

func TestVerifyWithoutChallenge(t *testing.T) {
	e := newTestEngine()

	_, err := e.Verify(context.Background(), VerifyInput{Phone: "9876543210", Code: "123456"})
	require.ErrorIs(t, err, ErrNoPendingChallenge)
}

func TestNewChallengeSupersedesOld(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	first, err := e.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)
	second, err := e.RequestChallenge(ctx, "+91 9876543210")
	require.NoError(t, err)
	require.NotEqual(t, first.TransactionID, second.TransactionID)

	_, err = e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: "123456", TransactionID: first.TransactionID})
	require.ErrorIs(t, err, ErrNoPendingChallenge)

	_, err = e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: "123456", TransactionID: second.TransactionID})
	require.NoError(t, err)
}

func TestChallengeExpires(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	e := newTestEngine(WithTTL(time.Minute), WithClock(clk.now))
	ctx := context.Background()

	res, err := e.RequestChallenge(ctx, "8765432109")
	require.NoError(t, err)
	assert.Equal(t, clk.t.Add(time.Minute), res.ExpiresAt)

	clk.t = clk.t.Add(time.Minute)
	_, err = e.Verify(ctx, VerifyInput{Phone: "8765432109", Code: "123456"})
	require.ErrorIs(t, err, ErrNoPendingChallenge)
}

func TestStrictModeRequiresIssuedCode(t *testing.T) {
	n := &captureNotifier{}
	e := newTestEngine(WithMode(ModeStrict), WithNotifier(n))
	ctx := context.Background()

	_, err := e.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)
	code := n.lastCode(t)
	assert.Equal(t, notification.KindOTP, n.sent[0].Kind)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: wrong})
	require.ErrorIs(t, err, ErrCodeMismatch)

	res, err := e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: code})
	require.NoError(t, err)
	assert.Equal(t, "123456789012", res.Record.NationalID)
}

func TestStrictModeBurnsChallengeAfterRepeatedMisses(t *testing.T) {
	n := &captureNotifier{}
	e := newTestEngine(WithMode(ModeStrict), WithNotifier(n))
	ctx := context.Background()

	_, err := e.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)
	code := n.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i < maxCodeAttempts; i++ {
		_, err = e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: wrong})
		require.ErrorIs(t, err, ErrCodeMismatch)
	}
	_, err = e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: wrong})
	require.ErrorIs(t, err, ErrTooManyAttempts)

	_, err = e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: code})
	require.ErrorIs(t, err, ErrNoPendingChallenge)
}

func TestStrictModeProviderVerifiedSkipsLocalCode(t *testing.T) {
	e := newTestEngine(WithMode(ModeStrict))
	ctx := context.Background()

	_, err := e.RequestChallenge(ctx, "9876543210")
	require.NoError(t, err)
	require.NoError(t, e.BindProviderTransaction(ctx, "9876543210", "uidai-txn-1"))

	c, err := e.Pending(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "uidai-txn-1", c.ProviderTxnID)

	_, err = e.Verify(ctx, VerifyInput{Phone: "9876543210", Code: "424242", ProviderVerified: true})
	require.NoError(t, err)
}

func TestLinkedIdentityDoesNotIssueChallenge(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	rec, err := e.LinkedIdentity(ctx, "919123456789")
	require.NoError(t, err)
	assert.Equal(t, "Vikram Patel", rec.DisplayName)

	state, err := e.Status(ctx, "9123456789")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	e := NewEngine(directory.NewDemo(), store, zap.NewNop(), WithTTL(time.Minute))
	ctx := context.Background()

	res, err := e.RequestChallenge(ctx, "7654321098")
	require.NoError(t, err)

	got, ok, err := store.Get(ctx, "7654321098")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.TransactionID, got.TransactionID)
	assert.Equal(t, time.Minute, mr.TTL(challengePrefix+"7654321098"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = store.Get(ctx, "7654321098")
	require.NoError(t, err)
	assert.False(t, ok)
}
