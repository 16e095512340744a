package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName         = "eRation"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultSessionTTL      = 12 * time.Hour
	defaultOTPTTL          = 5 * time.Minute
	defaultUIDAITimeout    = 10 * time.Second
	defaultLoginRatePerMin = 5
	defaultUIDAIBaseURL    = "https://api.uidai.gov.in"
	devJWTSecret           = "dev-secret-change-me"

	// OTPModeDemo accepts any well-formed code once a challenge is pending.
	OTPModeDemo = "demo"
	// OTPModeStrict issues a random code and requires an exact match.
	OTPModeStrict = "strict"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	SessionTTL      time.Duration
	OTPMode         string
	OTPTTL          time.Duration
	RequireChecksum bool
	LoginRatePerMin int
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
	UIDAI           UIDAI
}

// UIDAI holds credentials for the national-ID OTP integration. Placeholder
// values leave the integration disabled.
type UIDAI struct {
	BaseURL    string
	AUACode    string
	SubAUACode string
	LicenseKey string
	Timeout    time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
// A .env file in the working directory is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		SessionTTL:      defaultSessionTTL,
		OTPMode:         strings.ToLower(getEnv("OTP_MODE", OTPModeDemo)),
		OTPTTL:          defaultOTPTTL,
		LoginRatePerMin: defaultLoginRatePerMin,
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,
		UIDAI: UIDAI{
			BaseURL:    getEnv("UIDAI_BASE_URL", defaultUIDAIBaseURL),
			AUACode:    os.Getenv("UIDAI_AUA_CODE"),
			SubAUACode: os.Getenv("UIDAI_SUB_AUA_CODE"),
			LicenseKey: os.Getenv("UIDAI_LICENSE_KEY"),
			Timeout:    defaultUIDAITimeout,
		},
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.OTPTTL, err = durationEnv("OTP_TTL", cfg.OTPTTL); err != nil {
		return Config{}, err
	}
	if cfg.UIDAI.Timeout, err = durationEnv("UIDAI_TIMEOUT", cfg.UIDAI.Timeout); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("LOGIN_RATE_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOGIN_RATE_PER_MIN: %w", err)
		}
		cfg.LoginRatePerMin = n
	}

	if v := os.Getenv("REQUIRE_CHECKSUM"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REQUIRE_CHECKSUM: %w", err)
		}
		cfg.RequireChecksum = b
	}

	switch cfg.OTPMode {
	case OTPModeDemo, OTPModeStrict:
	default:
		return Config{}, fmt.Errorf("invalid OTP_MODE %q", cfg.OTPMode)
	}

	if cfg.IsDev() {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = devJWTSecret
		}
		return cfg, nil
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local/development environment where
// Postgres and Redis are optional.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// durationEnv accepts either a Go duration ("90s") or a plain number of seconds.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
