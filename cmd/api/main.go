package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"server/internal/adapter/repo"
	"server/internal/auth"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/leaderboard"
	"server/internal/metrics"
	"server/internal/scan"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := infra.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	users := repo.NewUserRepository(runner)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	verifier := scan.NewVerifier(cfg.QRToken)
	scans := scan.NewStore(verifier, cfg.ScanSessionTTL, func(s *scan.Session) {
		m.ScanSessions.WithLabelValues(string(s.State)).Inc()
	})
	go scans.Run(ctx.Done())

	board := leaderboard.NewCache(users, logger, cfg.LeaderboardRefresh)
	go board.Run(ctx)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTokenDuration)

	app := &handlers.App{
		Logger:   logger,
		Users:    users,
		Stats:    users,
		Auth:     auth.NewAuthenticator(users, cfg.AdminEmails),
		Tokens:   tokens,
		Verifier: verifier,
		Scans:    scans,
		Board:    board,
		Metrics:  m,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Tokens:          tokens,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Registry:        registry,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
