package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ndewijer/SnapCharts-Backend/internal/apperrors"
	"github.com/ndewijer/SnapCharts-Backend/internal/model"
	"github.com/ndewijer/SnapCharts-Backend/internal/yahoo"
)

// MarketService exposes symbol search and chart data from the quote provider.
type MarketService struct {
	client yahoo.Client
}

// NewMarketService creates a new MarketService backed by client.
func NewMarketService(client yahoo.Client) *MarketService {
	return &MarketService{client: client}
}

// Search returns the assets matching query. A blank query yields an empty
// slice without contacting the provider.
//
// Provider failures are wrapped with ErrFailedToSearch and keep the
// underlying yahoo.NetworkError or yahoo.DecodeError reachable via errors.As.
func (s *MarketService) Search(ctx context.Context, query string) ([]model.Asset, error) {
	if strings.TrimSpace(query) == "" {
		return []model.Asset{}, nil
	}

	assets, err := s.client.SearchAssets(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToSearch, err)
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	return assets, nil
}

// Chart loads the bars of symbol for a range token or picker label.
// Unknown ranges fall back to the default one-month window.
//
// Parameters:
//   - symbol: ticker as returned by Search, e.g. "AAPL" or "^GSPC"
//   - rangeToken: provider token ("5d"), picker label ("1W") or empty
//
// Returns ChartData whose Range and Interval reflect what was requested from
// the provider. LastClose is the close of the final bar, nil when no bars came back.
func (s *MarketService) Chart(ctx context.Context, symbol, rangeToken string) (model.ChartData, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return model.ChartData{}, apperrors.ErrInvalidSymbol
	}

	// The client resolves the token itself; report that same pair.
	rangeToken = strings.TrimSpace(rangeToken)
	params := yahoo.ResolveRange(rangeToken)

	bars, err := s.client.GetBars(ctx, symbol, rangeToken)
	if err != nil {
		return model.ChartData{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveBars, err)
	}
	if bars == nil {
		bars = []model.Bar{}
	}

	data := model.ChartData{
		Symbol:   symbol,
		Range:    params.Range,
		Interval: params.Interval,
		Bars:     bars,
	}
	if n := len(bars); n > 0 {
		last := bars[n-1].Close
		data.LastClose = &last
	}
	return data, nil
}

// Ranges lists the chart range picker options in display order.
func (s *MarketService) Ranges() []model.RangeOption {
	return yahoo.RangeOptions()
}
