package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/SnapCharts-Backend/internal/apperrors"
	"github.com/ndewijer/SnapCharts-Backend/internal/model"
	"github.com/ndewijer/SnapCharts-Backend/internal/repository"
	"github.com/ndewijer/SnapCharts-Backend/internal/yahoo"
)

// refreshRange is the chart window whose last close becomes a favorite's current price.
const refreshRange = "1d"

// RefreshObserver receives the outcome of refresh runs, typically a metrics recorder.
type RefreshObserver interface {
	RecordRefresh(summary model.RefreshSummary, elapsed time.Duration)
	RecordLastPrice(symbol string, price float64)
}

type noopRefreshObserver struct{}

func (noopRefreshObserver) RecordRefresh(model.RefreshSummary, time.Duration) {}
func (noopRefreshObserver) RecordLastPrice(string, float64)                   {}

// PriceRefresher keeps the last known price of every favorite up to date,
// either on demand or on a cron schedule.
type PriceRefresher struct {
	favoriteRepo  *repository.FavoriteRepository
	client        yahoo.Client
	workers       int
	symbolTimeout time.Duration
	observer      RefreshObserver
	logger        zerolog.Logger

	runMu sync.Mutex // one run at a time, scheduled or manual

	cronMu sync.Mutex
	cron   *cron.Cron
}

// RefresherOption configures a PriceRefresher.
type RefresherOption func(*PriceRefresher)

// WithRefreshObserver reports run summaries and stored prices to o.
func WithRefreshObserver(o RefreshObserver) RefresherOption {
	return func(p *PriceRefresher) { p.observer = o }
}

// WithRefreshLogger sets the logger used for run and per-symbol messages.
func WithRefreshLogger(l zerolog.Logger) RefresherOption {
	return func(p *PriceRefresher) { p.logger = l }
}

// WithSymbolTimeout bounds the provider call made for each favorite.
func WithSymbolTimeout(d time.Duration) RefresherOption {
	return func(p *PriceRefresher) { p.symbolTimeout = d }
}

// NewPriceRefresher creates a PriceRefresher that fetches at most workers
// symbols concurrently. workers below one is treated as one.
func NewPriceRefresher(favoriteRepo *repository.FavoriteRepository, client yahoo.Client, workers int, opts ...RefresherOption) *PriceRefresher {
	if workers < 1 {
		workers = 1
	}
	p := &PriceRefresher{
		favoriteRepo:  favoriteRepo,
		client:        client,
		workers:       workers,
		symbolTimeout: 20 * time.Second,
		observer:      noopRefreshObserver{},
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RefreshAll fetches the latest bars of every favorite and stores the close of
// the final bar as its current price.
//
// A failing symbol is logged and counted in Failed, it never aborts the run.
// Favorites for which the provider returns no bars, or which are removed
// while the run is in progress, are counted in Skipped.
func (p *PriceRefresher) RefreshAll(ctx context.Context) (model.RefreshSummary, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now()

	favorites, err := p.favoriteRepo.ListFavorites(ctx)
	if err != nil {
		return model.RefreshSummary{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshPrices, err)
	}

	var (
		mu      sync.Mutex
		summary model.RefreshSummary
	)
	count := func(result refreshResult) {
		mu.Lock()
		defer mu.Unlock()
		switch result {
		case refreshUpdated:
			summary.Updated++
		case refreshSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	var eg errgroup.Group
	eg.SetLimit(p.workers)
	for _, f := range favorites {
		eg.Go(func() error {
			count(p.refreshOne(ctx, f.Symbol))
			return nil
		})
	}
	_ = eg.Wait()

	elapsed := time.Since(start)
	p.observer.RecordRefresh(summary, elapsed)
	p.logger.Info().
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("elapsed", elapsed).
		Msg("favorite prices refreshed")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

type refreshResult int

const (
	refreshUpdated refreshResult = iota
	refreshSkipped
	refreshFailed
)

func (p *PriceRefresher) refreshOne(ctx context.Context, symbol string) refreshResult {
	symbolCtx, cancel := context.WithTimeout(ctx, p.symbolTimeout)
	defer cancel()

	bars, err := p.client.GetBars(symbolCtx, symbol, refreshRange)
	if err != nil {
		p.logger.Warn().Err(err).Str("symbol", symbol).Msg("price refresh failed")
		return refreshFailed
	}
	if len(bars) == 0 {
		p.logger.Debug().Str("symbol", symbol).Msg("no bars returned, keeping previous price")
		return refreshSkipped
	}

	last := bars[len(bars)-1]
	if err := p.favoriteRepo.UpdateLastPrice(ctx, symbol, last.Close, last.Time); err != nil {
		if errors.Is(err, apperrors.ErrFavoriteNotFound) {
			return refreshSkipped
		}
		p.logger.Warn().Err(err).Str("symbol", symbol).Msg("failed to store refreshed price")
		return refreshFailed
	}

	p.observer.RecordLastPrice(symbol, last.Close)
	return refreshUpdated
}

// Start schedules RefreshAll on a standard five-field cron spec or a
// descriptor such as "@every 15m". A tick is skipped while the previous run
// is still going.
func (p *PriceRefresher) Start(spec string) error {
	p.cronMu.Lock()
	defer p.cronMu.Unlock()

	if p.cron != nil {
		return fmt.Errorf("price refresher already started")
	}

	cronLogger := cron.PrintfLogger(&p.logger)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddFunc(spec, p.scheduledRun); err != nil {
		return fmt.Errorf("register price refresh: %w", err)
	}

	c.Start()
	p.cron = c
	p.logger.Info().Str("schedule", spec).Msg("price refresher started")
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish or ctx to expire.
func (p *PriceRefresher) Stop(ctx context.Context) {
	p.cronMu.Lock()
	c := p.cron
	p.cron = nil
	p.cronMu.Unlock()

	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
		p.logger.Info().Msg("price refresher stopped")
	case <-ctx.Done():
		p.logger.Warn().Msg("price refresher did not stop in time")
	}
}

func (p *PriceRefresher) scheduledRun() {
	if _, err := p.RefreshAll(context.Background()); err != nil {
		p.logger.Error().Err(err).Msg("scheduled price refresh failed")
	}
}
