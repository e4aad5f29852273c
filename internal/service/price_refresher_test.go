package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
	"github.com/ndewijer/SnapCharts-Backend/internal/service"
	"github.com/ndewijer/SnapCharts-Backend/internal/testutil"
	"github.com/ndewijer/SnapCharts-Backend/internal/yahoo"
)

type recordingRefreshObserver struct {
	mu        sync.Mutex
	summaries []model.RefreshSummary
	prices    map[string]float64
}

func (o *recordingRefreshObserver) RecordRefresh(s model.RefreshSummary, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.summaries = append(o.summaries, s)
}

func (o *recordingRefreshObserver) RecordLastPrice(symbol string, price float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.prices == nil {
		o.prices = map[string]float64{}
	}
	o.prices[symbol] = price
}

// TestPriceRefresher_RefreshAll tests the batch price update.
//
// WHY: one bad symbol must not stop the rest of the watch list from getting
// fresh prices, and the summary must say exactly what happened.
func TestPriceRefresher_RefreshAll(t *testing.T) {
	ctx := context.Background()

	t.Run("stores last close per favorite", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.CreateFavorite(t, db, "AAPL")
		testutil.CreateFavorite(t, db, "MSFT")

		end := time.Date(2024, 3, 8, 21, 0, 0, 0, time.UTC)
		mock := testutil.NewMockYahooClient().
			WithBarsFor("AAPL", testutil.MakeBars(3, 170, end)).
			WithBarsFor("MSFT", testutil.MakeBars(2, 400, end))
		observer := &recordingRefreshObserver{}
		refresher := testutil.NewTestPriceRefresher(t, db, mock, service.WithRefreshObserver(observer))

		summary, err := refresher.RefreshAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.RefreshSummary{Updated: 2}, summary)

		svc := testutil.NewTestFavoriteService(t, db)
		aapl, err := svc.Get(ctx, "AAPL")
		require.NoError(t, err)
		require.NotNil(t, aapl.LastPrice)
		assert.Equal(t, 172.0, *aapl.LastPrice)
		require.NotNil(t, aapl.LastPriceAt)
		assert.True(t, end.Equal(*aapl.LastPriceAt))

		for _, req := range mock.BarRequests() {
			assert.Equal(t, "1d", req.Range)
		}
		assert.Equal(t, []model.RefreshSummary{{Updated: 2}}, observer.summaries)
		assert.Equal(t, map[string]float64{"AAPL": 172, "MSFT": 401}, observer.prices)
	})

	t.Run("counts failures and skips without aborting", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.CreateFavorite(t, db, "GOOD")
		testutil.NewFavorite().WithSymbol("EMPTY").WithLastPrice(10, time.Now()).Build(t, db)
		testutil.CreateFavorite(t, db, "BAD")

		mock := testutil.NewMockYahooClient().
			WithBarsFor("EMPTY", []model.Bar{}).
			WithErrorFor("BAD", &yahoo.NetworkError{Op: yahoo.OpChart, StatusCode: 404})
		refresher := testutil.NewTestPriceRefresher(t, db, mock)

		summary, err := refresher.RefreshAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.RefreshSummary{Updated: 1, Skipped: 1, Failed: 1}, summary)

		empty, err := testutil.NewTestFavoriteService(t, db).Get(ctx, "EMPTY")
		require.NoError(t, err)
		require.NotNil(t, empty.LastPrice)
		assert.Equal(t, 10.0, *empty.LastPrice, "previous price is kept")
	})

	t.Run("empty watch list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockYahooClient()
		refresher := testutil.NewTestPriceRefresher(t, db, mock)

		summary, err := refresher.RefreshAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.RefreshSummary{}, summary)
		assert.Empty(t, mock.BarRequests())
	})

	t.Run("cancelled context", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.CreateFavorite(t, db, "AAPL")
		refresher := testutil.NewTestPriceRefresher(t, db, testutil.NewMockYahooClient())

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := refresher.RefreshAll(cctx)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestPriceRefresher_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	refresher := testutil.NewTestPriceRefresher(t, db, testutil.NewMockYahooClient())

	assert.Error(t, refresher.Start("not a schedule"))

	require.NoError(t, refresher.Start("@every 1h"))
	assert.Error(t, refresher.Start("@every 1h"), "second start is rejected")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	refresher.Stop(ctx)
	refresher.Stop(ctx)

	require.NoError(t, refresher.Start("@every 1h"), "restart after stop")
	refresher.Stop(ctx)
}
