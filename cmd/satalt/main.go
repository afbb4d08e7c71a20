// Satalt serves the satellite altitude time-series API: it fetches current
// orbital elements from CelesTrak per request, propagates them with SGP4,
// and returns altitude-above-spherical-Earth samples as JSON.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ryuabesei/Satellite-Altitude-App/internal/altitude"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/api"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/config"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/tle"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "Path to config TOML (optional)")
		bind       = pflag.String("bind", "", "HTTP bind address (overrides config)")
	)
	pflag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("config load failed", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	applyEnvOverrides(&cfg)
	if *bind != "" {
		cfg.Server.Bind = *bind
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))

	fetcher := tle.NewFetcher(
		cfg.Upstream.BaseURL,
		time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second,
		logger.With("component", "tle"),
	)
	computer := altitude.NewComputer(cfg.Propagation.Workers, logger.With("component", "propagation"))
	svc := altitude.NewService(fetcher, computer, logger.With("component", "altitude"))

	srv := api.NewServer(cfg.Server.Bind, svc, api.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustProxy:     cfg.Server.TrustProxy,
	}, logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			"addr", cfg.Server.Bind,
			"upstream", fetcher.BaseURL(),
			"workers", cfg.Propagation.Workers,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// applyEnvOverrides layers deployment-environment knobs on top of the file
// config. Invalid values are ignored in favor of the configured ones.
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("SATALT_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("SATALT_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	if v := os.Getenv("SATALT_TRUST_PROXY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.TrustProxy = b
		}
	}
	if v := os.Getenv("SATALT_UPSTREAM_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("SATALT_UPSTREAM_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.Upstream.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("SATALT_PROP_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.Propagation.Workers = n
		}
	}
	if v := os.Getenv("SATALT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
