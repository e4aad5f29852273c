package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/SnapCharts-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/SnapCharts-Backend/internal/api/middleware"
	"github.com/ndewijer/SnapCharts-Backend/internal/config"
	"github.com/ndewijer/SnapCharts-Backend/internal/metrics"
	"github.com/ndewijer/SnapCharts-Backend/internal/service"
)

// Services bundles the service layer the router dispatches to.
type Services struct {
	System    *service.SystemService
	Market    *service.MarketService
	Favorite  *service.FavoriteService
	Refresher *service.PriceRefresher
}

// NewRouter creates and configures the HTTP router.
// rec may be nil, in which case no metrics are recorded or served.
func NewRouter(svc Services, rec *metrics.Recorder, logger zerolog.Logger, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)
	if rec != nil {
		r.Use(custommiddleware.Metrics(rec))
	}

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	liveOpts := []handlers.LiveSearchOption{handlers.WithLiveSearchLogger(logger)}
	if rec != nil {
		liveOpts = append(liveOpts, handlers.WithSessionObserver(rec))
	}

	// Bounded by the request deadline; the live search socket is long-lived and exempt.
	timeout := func(next http.Handler) http.Handler { return next }
	if cfg.Server.RequestTimeout > 0 {
		timeout = middleware.Timeout(cfg.Server.RequestTimeout)
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Use(timeout)
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		marketHandler := handlers.NewMarketHandler(svc.Market)

		r.Route("/search", func(r chi.Router) {
			liveHandler := handlers.NewLiveSearchHandler(svc.Market, cfg.Search.Debounce, cfg.CORS.AllowedOrigins, liveOpts...)
			r.With(timeout).Get("/", marketHandler.Search)
			r.Get("/live", liveHandler.LiveSearch)
		})

		r.Route("/chart", func(r chi.Router) {
			r.Use(timeout)
			r.Get("/ranges", marketHandler.Ranges)
			r.With(custommiddleware.ValidateSymbolMiddleware).Get("/{symbol}", marketHandler.Chart)
		})

		r.Route("/favorite", func(r chi.Router) {
			r.Use(timeout)
			favoriteHandler := handlers.NewFavoriteHandler(svc.Favorite, svc.Refresher)
			r.Get("/", favoriteHandler.Favorites)
			r.Post("/", favoriteHandler.CreateFavorite)
			r.Post("/refresh", favoriteHandler.RefreshPrices)

			r.Route("/{symbol}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateSymbolMiddleware)
				r.Get("/", favoriteHandler.FavoriteStatus)
				r.Delete("/", favoriteHandler.DeleteFavorite)
				r.Post("/toggle", favoriteHandler.ToggleFavorite)
			})
		})
	})

	if rec != nil && cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, rec.Handler())
	}

	return r
}
