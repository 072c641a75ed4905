package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"riskd/internal/bootstrap"
	"riskd/internal/cache"
	"riskd/internal/config"
	"riskd/internal/httpapi"
	"riskd/internal/hub"
	"riskd/internal/inference"
	"riskd/internal/registry"
)

func main() {
	// Flags with environment variable defaults
	cfgPath := flag.String("config", os.Getenv("RISKD_CONFIG"), "Path to config file (.yaml/.json/.toml)")
	addr := flag.String("addr", "", "HTTP listen address override, e.g. :8080")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var cfg config.Config
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *cfgPath).Msg("failed to load config")
		}
	}
	cfg.ApplyDefaults()
	if *addr != "" {
		cfg.Addr = *addr
	}
	if v := os.Getenv("RISKD_ADDR"); v != "" && *addr == "" {
		cfg.Addr = v
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Credentials come from the environment only, never config files.
	creds := hub.Credentials{
		AccessKey: os.Getenv("RISKD_HUB_ACCESS_KEY"),
		SecretKey: os.Getenv("RISKD_HUB_SECRET_KEY"),
		Token:     os.Getenv("RISKD_HUB_TOKEN"),
	}
	client, err := hub.New(cfg.HubBackend, cfg.HubEndpoint, creds, cfg.HubUseSSL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build hub client")
	}

	root, err := cache.Resolve(cfg.PersistentDir, cfg.ScratchDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve cache root")
	}
	logger.Info().Str("cache_root", root).Msg("cache placement resolved")

	// Bootstrap runs to completion before the server accepts traffic; a
	// mandatory artifact failure means the process must not serve.
	reg := registry.New()
	mgr := bootstrap.New(bootstrap.Config{
		Client:    client,
		CacheRoot: root,
		Attempts:  cfg.FetchAttempts,
		Backoff:   time.Duration(cfg.FetchBackoffMS) * time.Millisecond,
		IDColumn:  cfg.IDColumn,
		Logger:    logger,
	})
	if _, err := mgr.Run(context.Background(), reg, bootstrap.DefaultSpecs(cfg)); err != nil {
		logger.Fatal().Err(err).Msg("bootstrap failed")
	}

	svc := inference.New(reg, cfg.DashboardFeatures)
	httpapi.SetLogger(logger)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins)
	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(svc)}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("riskd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}
