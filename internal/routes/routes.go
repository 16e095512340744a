package routes

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/e-ration/eration/internal/auth"
	"github.com/e-ration/eration/internal/config"
	"github.com/e-ration/eration/internal/device"
	"github.com/e-ration/eration/internal/directory"
	"github.com/e-ration/eration/internal/metrics"
	"github.com/e-ration/eration/internal/middleware"
	"github.com/e-ration/eration/internal/notification"
	"github.com/e-ration/eration/internal/otp"
	"github.com/e-ration/eration/internal/profile"
	"github.com/e-ration/eration/internal/storage"
	"github.com/e-ration/eration/internal/uidai"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Cache   *redis.Client
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// Directory overrides the directory chosen from DB. Used by tests.
	Directory directory.Directory
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	dir := d.Directory
	if dir == nil {
		if d.DB != nil {
			dir = directory.NewPostgresDirectory(d.DB)
		} else {
			dir = directory.NewDemo()
		}
	}

	// Challenges prefer Redis; documents prefer Postgres, then Redis.
	var (
		challenges otp.ChallengeStore = otp.NewMemoryStore()
		docs       storage.Adapter    = storage.NewMemory()
	)
	if d.Cache != nil {
		challenges = otp.NewRedisStore(d.Cache)
		docs = storage.NewRedis(d.Cache)
	}
	if d.DB != nil {
		docs = storage.NewPostgres(d.DB)
	}

	engine := otp.NewEngine(dir, challenges, d.Logger.Named("otp"),
		otp.WithMode(otp.Mode(d.Cfg.OTPMode)),
		otp.WithTTL(d.Cfg.OTPTTL),
		otp.WithNotifier(notification.NewLoggerNotifier(d.Logger.Named("sms"))),
	)
	profiles := profile.NewRegistry(dir, docs, d.Logger.Named("profile"), profile.WithChecksum(d.Cfg.RequireChecksum))
	devices := device.NewManager(profiles, d.Logger.Named("device"))
	profiles.SetIdleTimeout(d.Cfg.SessionTTL)
	devices.SetIdleTimeout(d.Cfg.SessionTTL)

	var provider uidai.Provider = uidai.Disabled{}
	uidaiCfg := uidai.Config{
		BaseURL:    d.Cfg.UIDAI.BaseURL,
		AUACode:    d.Cfg.UIDAI.AUACode,
		SubAUACode: d.Cfg.UIDAI.SubAUACode,
		LicenseKey: d.Cfg.UIDAI.LicenseKey,
		Timeout:    d.Cfg.UIDAI.Timeout,
	}
	if uidaiCfg.Configured() {
		provider = uidai.NewClient(uidaiCfg)
	}

	authSvc := auth.NewService(engine, profiles, provider, auth.NewTokens(d.Cfg.JWTSecret, d.Cfg.SessionTTL), d.Metrics, d.Logger.Named("auth"))
	authHandler := auth.NewHandler(authSvc)
	profileHandler := profile.NewHandler(profiles, d.Metrics)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	session := middleware.Session(authSvc)
	RegisterAuthRoutes(api, authHandler, devices, session, middleware.OptionalSession(authSvc), middleware.OTPRateLimit(d.Cache, d.Cfg.LoginRatePerMin, d.Logger))

	protected := api.Group("", session)
	RegisterProfileRoutes(protected, profileHandler, authHandler)
	RegisterRationCardRoutes(protected, devices)
	RegisterApplicationRoutes(protected, devices)
	RegisterNotificationRoutes(protected, devices)
	RegisterInternetRoutes(protected, devices)

	return nil
}

// workspace returns the caller's device workspace.
func workspace(c *fiber.Ctx, devices *device.Manager) *device.Workspace {
	return devices.For(middleware.DeviceID(c))
}
