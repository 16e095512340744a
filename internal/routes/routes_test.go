package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-ration/eration/internal/apperror"
	"github.com/e-ration/eration/internal/config"
	"github.com/e-ration/eration/internal/logging"
)

func testConfig() config.Config {
	return config.Config{
		AppName:         "eration-test",
		AppEnv:          "test",
		JWTSecret:       "test-secret",
		SessionTTL:      time.Hour,
		OTPMode:         config.OTPModeDemo,
		OTPTTL:          5 * time.Minute,
		LoginRatePerMin: 5,
		IdempotencyTTL:  time.Minute,
	}
}

func newTestApp(t *testing.T, cache *redis.Client) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: apperror.Handler})
	require.NoError(t, Setup(app, Deps{Cfg: testConfig(), Cache: cache, Logger: logging.Discard()}))
	return app
}

type client struct {
	t       *testing.T
	app     *fiber.App
	token   string
	idemKey string
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if c.idemKey != "" {
		req.Header.Set("Idempotency-Key", c.idemKey)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(c.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (c *client) login(phone string) map[string]any {
	c.t.Helper()
	status, _ := c.do(http.MethodPost, "/api/v1/auth/otp", fiber.Map{"phone": phone})
	require.Equal(c.t, http.StatusCreated, status)
	status, body := c.do(http.MethodPost, "/api/v1/auth/verify", fiber.Map{"phone": phone, "code": "123456"})
	require.Equal(c.t, http.StatusOK, status, body)
	c.token = body["token"].(string)
	return body
}

func TestLoginFlowOverHTTP(t *testing.T) {
	c := &client{t: t, app: newTestApp(t, nil)}

	status, body := c.do(http.MethodPost, "/api/v1/auth/lookup", fiber.Map{"phone": "9876543210"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1234 5678 9012", body["national_id"])

	status, body = c.do(http.MethodPost, "/api/v1/auth/otp", fiber.Map{"phone": "0000000000"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "not linked")

	status, body = c.do(http.MethodPost, "/api/v1/auth/otp", fiber.Map{"phone": "9876543210"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "+91 ******3210", body["masked_phone"])
	assert.Equal(t, "premium", body["tier"])

	status, _ = c.do(http.MethodPost, "/api/v1/auth/verify", fiber.Map{"phone": "9876543210", "code": "12"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = c.do(http.MethodPost, "/api/v1/auth/verify", fiber.Map{"phone": "9876543210", "code": "123456"})
	require.Equal(t, http.StatusOK, status)
	c.token = body["token"].(string)

	status, body = c.do(http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, status)
	ent := body["entitlement"].(map[string]any)
	assert.Equal(t, true, ent["has_elevated_access"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	c := &client{t: t, app: newTestApp(t, nil)}

	status, _ := c.do(http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	c.token = "garbage"
	status, _ = c.do(http.MethodGet, "/api/v1/ration-card", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProfileLinkSwitchRemove(t *testing.T) {
	c := &client{t: t, app: newTestApp(t, nil)}
	c.login("9876543210")

	status, linked := c.do(http.MethodPost, "/api/v1/profile/identities", fiber.Map{"national_id": "234567890123", "code": "111111"})
	require.Equal(t, http.StatusCreated, status)

	status, _ = c.do(http.MethodPost, "/api/v1/profile/identities", fiber.Map{"national_id": "234567890123", "code": "111111"})
	assert.Equal(t, http.StatusConflict, status)

	status, body := c.do(http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, status)
	p := body["profile"].(map[string]any)
	primaryID := p["primary"].(map[string]any)["id"].(string)
	assert.Equal(t, primaryID, p["active_id"])
	assert.Len(t, p["linked"], 1)

	status, body = c.do(http.MethodPost, "/api/v1/profile/switch", fiber.Map{"identity_id": linked["id"]})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["entitlement"].(map[string]any)["has_elevated_access"])

	status, _ = c.do(http.MethodPost, "/api/v1/internet", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = c.do(http.MethodDelete, "/api/v1/profile/identities/"+primaryID, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = c.do(http.MethodDelete, "/api/v1/profile/identities/"+linked["id"].(string), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, primaryID, body["identity"].(map[string]any)["id"])
}

func TestPortalRecords(t *testing.T) {
	c := &client{t: t, app: newTestApp(t, nil)}
	c.login("9876543210")

	status, card := c.do(http.MethodGet, "/api/v1/ration-card", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "DL01234567890123", card["card_number"])

	status, _ = c.do(http.MethodPost, "/api/v1/ration-card/members", fiber.Map{"name": "Asha Kumar", "age": 70, "relation": "Mother", "national_id": "123456789016"})
	assert.Equal(t, http.StatusCreated, status)

	status, app := c.do(http.MethodPost, "/api/v1/applications", fiber.Map{"type": "Add Family Member"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = c.do(http.MethodPatch, "/api/v1/applications/"+app["id"].(string), fiber.Map{"status": "approved"})
	assert.Equal(t, http.StatusOK, status)

	status, feed := c.do(http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(4), feed["unread"])

	status, _ = c.do(http.MethodPost, "/api/v1/notifications/read-all", nil)
	assert.Equal(t, http.StatusNoContent, status)
	_, feed = c.do(http.MethodGet, "/api/v1/notifications", nil)
	assert.Equal(t, float64(0), feed["unread"])

	status, _ = c.do(http.MethodPost, "/api/v1/internet", nil)
	assert.Equal(t, http.StatusOK, status)
	status, usage := c.do(http.MethodGet, "/api/v1/internet", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, usage["usage"].(map[string]any)["enabled"])
}

func TestLogoutRevokesSession(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	c := &client{t: t, app: newTestApp(t, cache)}
	c.login("8765432109")

	status, _ := c.do(http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthAndMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	c := &client{t: t, app: newTestApp(t, cache)}

	status, body := c.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"].(map[string]any)["redis"])
	assert.Equal(t, "disabled", body["status"].(map[string]any)["postgres"])

	c.login("9876543210")
	resp, err := c.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "eration_otp_challenges_issued_total 1")
}

func TestVerifyIgnoresClientSuppliedDevice(t *testing.T) {
	app := newTestApp(t, nil)
	victim := &client{t: t, app: app}
	victimSession := victim.login("9876543210")

	other := &client{t: t, app: app}
	status, _ := other.do(http.MethodPost, "/api/v1/auth/otp", fiber.Map{"phone": "8765432109"})
	require.Equal(t, http.StatusCreated, status)
	status, body := other.do(http.MethodPost, "/api/v1/auth/verify", fiber.Map{
		"phone":     "8765432109",
		"code":      "000000",
		"device_id": victimSession["device_id"],
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, victimSession["device_id"], body["device_id"])
	assert.Equal(t, "created", body["result"].(map[string]any)["outcome"])

	status, body = victim.do(http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, status)
	p := body["profile"].(map[string]any)
	assert.Empty(t, p["linked"])
	assert.Equal(t, "123456789012", p["primary"].(map[string]any)["national_id"])
}

func TestVerifyWithSessionReusesDevice(t *testing.T) {
	c := &client{t: t, app: newTestApp(t, nil)}
	first := c.login("9876543210")

	second := c.login("8765432109")
	assert.Equal(t, first["device_id"], second["device_id"])
	assert.Equal(t, "added", second["result"].(map[string]any)["outcome"])

	status, _ := c.do(http.MethodPost, "/api/v1/auth/otp", fiber.Map{"phone": "7654321098"})
	require.Equal(t, http.StatusCreated, status)
	c.token = "garbage"
	status, _ = c.do(http.MethodPost, "/api/v1/auth/verify", fiber.Map{"phone": "7654321098", "code": "123456"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginResponsesAreNotReplayedAcrossCallers(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })
	app := newTestApp(t, cache)

	victim := &client{t: t, app: app, idemKey: "1"}
	victimSession := victim.login("9876543210")

	other := &client{t: t, app: app, idemKey: "1"}
	status, body := other.do(http.MethodPost, "/api/v1/auth/verify", fiber.Map{"phone": "0000000000", "code": "999999"})
	assert.NotEqual(t, http.StatusOK, status)
	assert.NotContains(t, body, "token")
	assert.NotEqual(t, victimSession["token"], body["token"])
}
