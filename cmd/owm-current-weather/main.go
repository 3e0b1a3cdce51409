package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/owm-current-weather/internal/api/http"
	"github.com/i474232898/owm-current-weather/internal/config"
	"github.com/i474232898/owm-current-weather/internal/geocode"
	"github.com/i474232898/owm-current-weather/internal/logging"
	"github.com/i474232898/owm-current-weather/internal/metrics"
	"github.com/i474232898/owm-current-weather/internal/scheduler"
	"github.com/i474232898/owm-current-weather/owm"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg)
	slog.SetDefault(log)

	// Upstream transport, optionally behind a circuit breaker.
	var transport owm.Transport = owm.NewHTTPTransport(&http.Client{
		Timeout: cfg.HTTPTimeout,
	})
	if cfg.BreakerEnabled {
		transport = owm.NewBreakerTransport("openweathermap", transport)
	}

	// The client probes the key once; a rejected key is fatal.
	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	client, err := owm.New(startCtx, cfg.OpenWeatherAPIKey,
		owm.WithBaseURL(cfg.BaseURL),
		owm.WithTransport(transport),
		owm.WithLogger(log),
	)
	cancelStart()
	if err != nil {
		log.Error("failed to create OpenWeatherMap client", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	defaults := owm.Modifiers{Units: cfg.DefaultUnits, Language: cfg.DefaultLanguage}

	var geo geocode.Resolver
	if cfg.GeocoderAPIKey != "" {
		geo = geocode.NewGoogleResolver(cfg.GeocoderAPIKey)
	}

	// Scheduler that periodically logs the watch list.
	watch := make([]owm.LocationSelector, 0, len(cfg.Watch))
	for _, loc := range cfg.Watch {
		watch = append(watch, loc)
	}
	sched := scheduler.New(watch, cfg.WatchInterval, client, defaults, m, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "owm-current-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "owm-current-weather",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpapi.RegisterRoutes(app, client, httpapi.Options{
		Defaults: defaults,
		Geocoder: geo,
		Metrics:  m,
	})

	go func() {
		log.Info("server started", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("shutting down")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
