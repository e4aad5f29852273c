package testutil

import (
	"context"
	"sync"

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
	"github.com/ndewijer/SnapCharts-Backend/internal/yahoo"
)

var _ yahoo.Client = (*MockYahooClient)(nil)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined test data instead of making actual API calls and is
// safe for concurrent use.
type MockYahooClient struct {
	mu sync.Mutex

	// Assets is returned by SearchAssets
	Assets []model.Asset
	// SearchErr is returned by SearchAssets when set
	SearchErr error
	// SearchFunc overrides SearchAssets entirely when set
	SearchFunc func(ctx context.Context, query string) ([]model.Asset, error)

	// Bars is returned by GetBars for symbols missing from BarsBySymbol
	Bars []model.Bar
	// BarsBySymbol holds per-symbol bar series
	BarsBySymbol map[string][]model.Bar
	// BarsErr is returned by GetBars when set
	BarsErr error
	// ErrBySymbol holds per-symbol GetBars errors
	ErrBySymbol map[string]error

	searchQueries []string
	barRequests   []BarRequest
}

// BarRequest records one GetBars call.
type BarRequest struct {
	Symbol string
	Range  string
}

// NewMockYahooClient creates a new mock Yahoo client with default test data:
// two search hits and five daily bars.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		Assets: []model.Asset{
			{Symbol: "AAPL", Name: Ptr("Apple Inc."), Exchange: Ptr("NMS"), Type: Ptr("Equity")},
			{Symbol: "APLE", Name: Ptr("Apple Hospitality REIT, Inc."), Exchange: Ptr("NYQ"), Type: Ptr("Equity")},
		},
		Bars:         MakeBars(5, 100, fixedBarEnd),
		BarsBySymbol: map[string][]model.Bar{},
		ErrBySymbol:  map[string]error{},
	}
}

// SearchAssets returns the configured Assets or SearchErr.
func (m *MockYahooClient) SearchAssets(ctx context.Context, query string) ([]model.Asset, error) {
	m.mu.Lock()
	m.searchQueries = append(m.searchQueries, query)
	fn, assets, err := m.SearchFunc, m.Assets, m.SearchErr
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	return append([]model.Asset{}, assets...), nil
}

// GetBars returns the bars configured for symbol, or Bars.
func (m *MockYahooClient) GetBars(ctx context.Context, symbol, rangeToken string) ([]model.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.barRequests = append(m.barRequests, BarRequest{Symbol: symbol, Range: rangeToken})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.ErrBySymbol[symbol]; ok {
		return nil, err
	}
	if m.BarsErr != nil {
		return nil, m.BarsErr
	}
	if bars, ok := m.BarsBySymbol[symbol]; ok {
		return append([]model.Bar{}, bars...), nil
	}
	return append([]model.Bar{}, m.Bars...), nil
}

// WithSearchError configures SearchAssets to fail with err.
func (m *MockYahooClient) WithSearchError(err error) *MockYahooClient {
	m.SearchErr = err
	return m
}

// WithBarsError configures GetBars to fail with err.
func (m *MockYahooClient) WithBarsError(err error) *MockYahooClient {
	m.BarsErr = err
	return m
}

// WithBarsFor configures the bars returned for symbol.
func (m *MockYahooClient) WithBarsFor(symbol string, bars []model.Bar) *MockYahooClient {
	m.BarsBySymbol[symbol] = bars
	return m
}

// WithErrorFor configures GetBars to fail for symbol only.
func (m *MockYahooClient) WithErrorFor(symbol string, err error) *MockYahooClient {
	m.ErrBySymbol[symbol] = err
	return m
}

// WithEmptyBars configures GetBars to return no bars by default.
func (m *MockYahooClient) WithEmptyBars() *MockYahooClient {
	m.Bars = []model.Bar{}
	return m
}

// SearchQueries returns the queries passed to SearchAssets, in call order.
func (m *MockYahooClient) SearchQueries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.searchQueries...)
}

// BarRequests returns the GetBars calls, in call order.
func (m *MockYahooClient) BarRequests() []BarRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BarRequest{}, m.barRequests...)
}
