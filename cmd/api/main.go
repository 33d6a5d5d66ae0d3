package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fazecat/niftyscreener/Internal/app"
	"github.com/fazecat/niftyscreener/Internal/utils/config"
	"github.com/fazecat/niftyscreener/cmd/api/internal"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	pretty := flag.Bool("pretty", false, "human readable logs")
	flag.Parse()

	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	jwtManager, err := internal.NewJWTManager(cfg.Secrets.JWTSecretKey)
	if err != nil {
		log.Fatal().Err(err).Msg("API server needs a signing key")
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise scanner")
	}
	defer a.Close()

	apiServer := &internal.API{
		Scanner:      a.Scanner,
		Credential:   cfg.Credential(),
		DefaultLimit: cfg.Scan.SignalsLimit,
		Thresholds:   cfg.Thresholds,
		Swing:        *a.Scanner.Options().Swing,
		JWTManager:   jwtManager,
		TokenHours:   cfg.API.TokenHours,
		DB:           a.DB(),
	}

	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           internal.NewRouter(apiServer, a.Metrics.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("API server shutdown")
		}
	}()

	log.Info().Str("addr", cfg.API.Addr).Msg("Starting API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("API server failed")
	}
	log.Info().Msg("API server stopped")
}
