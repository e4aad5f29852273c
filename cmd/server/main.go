package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/SnapCharts-Backend/internal/api"
	"github.com/ndewijer/SnapCharts-Backend/internal/config"
	"github.com/ndewijer/SnapCharts-Backend/internal/database"
	"github.com/ndewijer/SnapCharts-Backend/internal/logger"
	"github.com/ndewijer/SnapCharts-Backend/internal/metrics"
	"github.com/ndewijer/SnapCharts-Backend/internal/repository"
	"github.com/ndewijer/SnapCharts-Backend/internal/service"
	"github.com/ndewijer/SnapCharts-Backend/internal/version"
	"github.com/ndewijer/SnapCharts-Backend/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logger")
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		l.Fatal().Err(err).Msg("Failed to migrate database")
	}

	l.Info().Str("path", cfg.Database.Path).Str("version", version.Version).Msg("Connected to database")

	var rec *metrics.Recorder
	if cfg.Metrics.Enabled {
		rec = metrics.New()
	}

	clientOpts := []yahoo.Option{
		yahoo.WithHTTPClient(&http.Client{Timeout: cfg.Yahoo.Timeout}),
		yahoo.WithBaseURL(cfg.Yahoo.BaseURL),
		yahoo.WithQuotesCount(cfg.Search.ResultLimit),
		yahoo.WithLogger(l.With().Str("component", "yahoo").Logger()),
	}
	if cfg.Yahoo.UserAgent != "" {
		clientOpts = append(clientOpts, yahoo.WithUserAgent(cfg.Yahoo.UserAgent))
	}
	if rec != nil {
		clientOpts = append(clientOpts, yahoo.WithObserver(rec))
	}
	client := yahoo.NewFinanceClient(clientOpts...)

	// Create repositories
	favoriteRepo := repository.NewFavoriteRepository(db)

	// Create services
	systemService := service.NewSystemService(db, map[string]bool{
		"favorites":     true,
		"live_search":   true,
		"price_refresh": cfg.Refresh.Enabled,
		"metrics":       cfg.Metrics.Enabled,
	})
	marketService := service.NewMarketService(client)
	favoriteService := service.NewFavoriteService(db, favoriteRepo)

	refresherOpts := []service.RefresherOption{
		service.WithRefreshLogger(l.With().Str("component", "refresher").Logger()),
	}
	if rec != nil {
		refresherOpts = append(refresherOpts, service.WithRefreshObserver(rec))
	}
	refresher := service.NewPriceRefresher(favoriteRepo, client, cfg.Refresh.Workers, refresherOpts...)

	if cfg.Refresh.Enabled {
		if err := refresher.Start(cfg.Refresh.Cron); err != nil {
			l.Fatal().Err(err).Msg("Failed to start price refresher")
		}
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Market:    marketService,
		Favorite:  favoriteService,
		Refresher: refresher,
	}, rec, l, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		l.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	refresher.Stop(ctx)

	if err := server.Shutdown(ctx); err != nil {
		l.Error().Err(err).Msg("Server forced to shutdown")
	}

	l.Info().Msg("Server exited")
}
