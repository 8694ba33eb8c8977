// Package server serves the built site and its data files to browsers.
package server

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Addr    string
	SiteDir string // the front end's build output, served at /
	DataDir string // pipeline output, served at /data
}

// New builds the app; it doesn't listen. Request lines go straight to the
// logger's output.
func New(cfg Config, log *logrus.Logger) *fiber.App {
	var out io.Writer = io.Discard
	if log != nil {
		out = log.Out
	}

	app := fiber.New(fiber.Config{
		AppName:               "flightmatrix",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${status} - ${method} ${path} (${latency})\n",
		Output: out,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if cfg.DataDir != "" {
		app.Static("/data", cfg.DataDir, fiber.Static{MaxAge: 300})
	}
	if cfg.SiteDir != "" {
		app.Static("/", cfg.SiteDir, fiber.Static{Index: "index.html"})
	}

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

// Serve listens on cfg.Addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, app *fiber.App, addr string, log logrus.FieldLogger) error {
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server starting")
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		return err
	}
	return <-errc
}
