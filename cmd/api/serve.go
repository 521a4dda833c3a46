package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/asistente-hogar/backend/internal/config"
	"github.com/asistente-hogar/backend/internal/handler"
	"github.com/asistente-hogar/backend/internal/service/ai"
	"github.com/asistente-hogar/backend/internal/service/chat"
	"github.com/asistente-hogar/backend/internal/service/places"
	"github.com/asistente-hogar/backend/internal/service/ratelimit"
	"github.com/asistente-hogar/backend/internal/service/relay"
	"github.com/asistente-hogar/backend/internal/telemetry"
)

func serve(ctx context.Context, opts *serveOptions) error {
	envErr := godotenv.Load(opts.envFile)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Server, err = cfg.Server.WithAddr(opts.addr); err != nil {
		return err
	}

	logger, logCloser, err := telemetry.InitLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	if envErr != nil {
		logger.Warn("failed to load env file, continuing with system environment", "file", opts.envFile, "error", envErr)
	}

	providers := telemetry.Noop()
	if cfg.Telemetry.Enabled {
		providers, err = telemetry.InitTelemetry(ctx, cfg.Telemetry.Dir, version)
		if err != nil {
			return err
		}
		logger.Info("telemetry enabled", "dir", cfg.Telemetry.Dir)
	}
	defer providers.Shutdown()

	model := newModel(ctx, cfg.AI, providers, logger)

	store := chat.NewStore()
	limiter := ratelimit.New(cfg.RateLimit.Limiter())

	placesCfg := cfg.Places.Service()
	placesCfg.HTTPClient = &http.Client{Timeout: cfg.Places.Timeout}
	placesCfg.Logger = logger

	router := handler.NewRouter(handler.Services{
		Store:  store,
		Relay:  relay.New(store, limiter, model, logger),
		Places: places.NewService(placesCfg),
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("asistente hogar backend listening", "addr", cfg.Server.Addr, "version", version)
	return runServer(ctx, srv)
}

// newModel returns nil when the provider is not configured; the relay then
// answers 503.
func newModel(ctx context.Context, cfg config.AIConfig, providers telemetry.Providers, logger *slog.Logger) ai.Model {
	if !cfg.Enabled() {
		logger.Warn("ai credentials not configured, chat disabled", "provider", cfg.Provider)
		return nil
	}

	instruction := ai.BuildSystemInstruction(ai.DefaultProfile(), cfg.SystemInstruction)
	base, err := cfg.NewModel(ctx, instruction)
	if err != nil {
		logger.Error("failed to initialize ai model, chat disabled", "provider", cfg.Provider, "error", err)
		return nil
	}

	model, err := ai.Instrument(base, cfg.Provider, providers.Tracer, providers.Meter)
	if err != nil {
		logger.Warn("failed to instrument ai model", "error", err)
		model = base
	}
	logger.Info("ai model initialized", "provider", cfg.Provider)
	return model
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
