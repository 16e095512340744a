package routes

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const probeTimeout = 2 * time.Second

// RegisterHealthRoutes adds the dependency probe endpoint.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			status = fiber.Map{"postgres": "disabled", "redis": "disabled"}
		)
		record := func(name string, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				status[name] = err.Error()
				return
			}
			status[name] = "ok"
		}

		g, gctx := errgroup.WithContext(ctx)
		if d.DB != nil {
			g.Go(func() error {
				err := d.DB.Ping(gctx)
				record("postgres", err)
				return err
			})
		}
		if d.Cache != nil {
			g.Go(func() error {
				err := d.Cache.Ping(gctx).Err()
				record("redis", err)
				return err
			})
		}

		code := fiber.StatusOK
		if err := g.Wait(); err != nil {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
