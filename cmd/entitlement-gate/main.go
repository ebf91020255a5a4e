// Package main точка входа entitlement-gate: веб-приложение с пробным периодом,
// премиум-доступом и панелью администратора.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/entitlement-gate/internal/app/gate"
	"github.com/magabrotheeeer/entitlement-gate/internal/config"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/logger"
	"github.com/magabrotheeeer/entitlement-gate/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()

	log, closer, err := logger.Setup(cfg.Env, cfg.LogFile)
	if err != nil {
		slog.Error("failed to set up logger", sl.Err(err))
		os.Exit(1)
	}
	defer closer.Close()

	log.Info("starting entitlement-gate", slog.String("env", cfg.Env), slog.String("base_url", cfg.BaseURL))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := gate.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("entitlement-gate stopped gracefully")
}
