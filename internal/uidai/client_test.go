package uidai

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validID = "444452518437"

func startFake(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		AUACode:    "AUA01",
		SubAUACode: "SUB01",
		LicenseKey: "licence",
		Timeout:    2 * time.Second,
	}
}

func TestConfigured(t *testing.T) {
	assert.False(t, Config{}.Configured())
	assert.False(t, Config{BaseURL: "https://x", AUACode: placeholderAUA, SubAUACode: "s", LicenseKey: "k"}.Configured())
	assert.False(t, Config{BaseURL: "https://x", AUACode: "a", SubAUACode: "s", LicenseKey: placeholderKey}.Configured())
	assert.True(t, testConfig("https://x").Configured())
}

func TestUnconfiguredClientRefuses(t *testing.T) {
	c := NewClient(Config{BaseURL: "https://x", AUACode: placeholderAUA, SubAUACode: placeholderSubAUA, LicenseKey: placeholderKey})

	_, err := c.GenerateChallenge(context.Background(), validID)
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.VerifyChallenge(context.Background(), validID, "123456", "t")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = Disabled{}.GenerateChallenge(context.Background(), validID)
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestClientRejectsBadChecksumLocally(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:1"))

	_, err := c.GenerateChallenge(context.Background(), "123456789012")
	require.ErrorIs(t, err, ErrInvalidNationalID)
}

func TestClientGenerateAndVerify(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	var gotSignature, gotAuth string
	app.Post(generatePath, func(c *fiber.Ctx) error {
		gotSignature = c.Get(signatureHeader)
		gotAuth = c.Get(fiber.HeaderAuthorization)
		var req otpRequest
		if err := c.BodyParser(&req); err != nil {
			return err
		}
		return c.JSON(otpResponse{Status: statusSuccess, TxnID: req.TxnID, Message: "OTP sent"})
	})
	app.Post(verifyPath, func(c *fiber.Ctx) error {
		var req otpRequest
		if err := c.BodyParser(&req); err != nil {
			return err
		}
		if req.OTP != "654321" {
			return c.JSON(otpResponse{Status: "FAILURE", TxnID: req.TxnID, Message: "OTP mismatch"})
		}
		return c.JSON(otpResponse{
			Status:   statusSuccess,
			TxnID:    req.TxnID,
			UserData: &Holder{Name: "Vikram Patel", Phone: "+91 9123456789"},
		})
	})

	c := NewClient(testConfig(startFake(t, app)))
	ctx := context.Background()

	ch, err := c.GenerateChallenge(ctx, validID)
	require.NoError(t, err)
	assert.NotEmpty(t, ch.TxnID)
	assert.Equal(t, "Bearer licence", gotAuth)
	assert.Len(t, gotSignature, 64)

	_, err = c.VerifyChallenge(ctx, validID, "000000", ch.TxnID)
	require.ErrorIs(t, err, ErrRejected)

	v, err := c.VerifyChallenge(ctx, validID, "654321", ch.TxnID)
	require.NoError(t, err)
	require.NotNil(t, v.Holder)
	assert.Equal(t, "Vikram Patel", v.Holder.Name)
}

func TestClientServerErrorIsUnavailable(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post(generatePath, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusBadGateway)
	})

	c := NewClient(testConfig(startFake(t, app)))
	_, err := c.GenerateChallenge(context.Background(), validID)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClientCancelledContext(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GenerateChallenge(ctx, validID)
	require.ErrorIs(t, err, ErrUnavailable)
}
