package uidai

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/e-ration/eration/internal/nationalid"
)

const (
	placeholderAUA    = "YOUR_AUA_CODE"
	placeholderSubAUA = "YOUR_SUB_AUA_CODE"
	placeholderKey    = "YOUR_LICENSE_KEY"

	statusSuccess   = "SUCCESS"
	signatureHeader = "X-Digital-Signature"
	defaultTimeout  = 10 * time.Second
	generatePath    = "/auth/otp/generate"
	verifyPath      = "/auth/otp/verify"
)

// Config holds the AUA credentials issued by the authority.
type Config struct {
	BaseURL    string
	AUACode    string
	SubAUACode string
	LicenseKey string
	Timeout    time.Duration
}

// Configured reports whether every credential is set to a real value.
func (c Config) Configured() bool {
	return configured(c.AUACode, placeholderAUA) &&
		configured(c.SubAUACode, placeholderSubAUA) &&
		configured(c.LicenseKey, placeholderKey) &&
		c.BaseURL != ""
}

func configured(v, placeholder string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != placeholder
}

// Client is the HTTP Provider.
type Client struct {
	cfg   Config
	newID func() string
	now   func() time.Time
}

// NewClient builds a client. An unconfigured client answers ErrNotConfigured.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, newID: uuid.NewString, now: time.Now}
}

type otpRequest struct {
	NationalID string `json:"aadhaarNumber"`
	OTP        string `json:"otp,omitempty"`
	TxnID      string `json:"txnId"`
	AUACode    string `json:"auaCode"`
	SubAUACode string `json:"subAuaCode"`
	Timestamp  string `json:"timestamp"`
}

type otpResponse struct {
	Status   string  `json:"status"`
	TxnID    string  `json:"txnId"`
	Message  string  `json:"message"`
	UserData *Holder `json:"userData"`
}

// GenerateChallenge asks the authority to send an OTP to the holder's phone.
func (c *Client) GenerateChallenge(ctx context.Context, nationalID string) (Challenge, error) {
	if !c.cfg.Configured() {
		return Challenge{}, ErrNotConfigured
	}
	if !nationalid.Validate(nationalID) {
		return Challenge{}, ErrInvalidNationalID
	}
	resp, err := c.post(ctx, generatePath, otpRequest{
		NationalID: nationalID,
		TxnID:      "TXN-" + c.newID(),
	})
	if err != nil {
		return Challenge{}, err
	}
	return Challenge{TxnID: resp.TxnID, Message: resp.Message}, nil
}

// VerifyChallenge submits the OTP the holder received.
func (c *Client) VerifyChallenge(ctx context.Context, nationalID, code, txnID string) (Verification, error) {
	if !c.cfg.Configured() {
		return Verification{}, ErrNotConfigured
	}
	if !nationalid.Validate(nationalID) {
		return Verification{}, ErrInvalidNationalID
	}
	resp, err := c.post(ctx, verifyPath, otpRequest{
		NationalID: nationalID,
		OTP:        code,
		TxnID:      txnID,
	})
	if err != nil {
		return Verification{}, err
	}
	return Verification{TxnID: resp.TxnID, Message: resp.Message, Holder: resp.UserData}, nil
}

func (c *Client) post(ctx context.Context, path string, req otpRequest) (otpResponse, error) {
	if err := ctx.Err(); err != nil {
		return otpResponse{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.AUACode = c.cfg.AUACode
	req.SubAUACode = c.cfg.SubAUACode
	req.Timestamp = c.now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(req)
	if err != nil {
		return otpResponse{}, fmt.Errorf("%w: encode: %v", ErrUnavailable, err)
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Post(c.cfg.BaseURL + path)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.cfg.LicenseKey)
	agent.Set(signatureHeader, c.sign(body))
	agent.ContentType(fiber.MIMEApplicationJSON)
	agent.Body(body)
	agent.Timeout(timeout)

	var resp otpResponse
	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return otpResponse{}, fmt.Errorf("%w: %v", ErrUnavailable, errors.Join(errs...))
	}
	if code >= fiber.StatusInternalServerError {
		return otpResponse{}, fmt.Errorf("%w: status %d", ErrUnavailable, code)
	}
	if resp.Status != statusSuccess {
		return otpResponse{}, fmt.Errorf("%w: %s", ErrRejected, resp.Message)
	}
	return resp, nil
}

// sign authenticates the payload with the licence key.
func (c *Client) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.LicenseKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
