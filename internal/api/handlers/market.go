package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/SnapCharts-Backend/internal/api/response"
	"github.com/ndewijer/SnapCharts-Backend/internal/apperrors"
	"github.com/ndewijer/SnapCharts-Backend/internal/service"
	"github.com/ndewijer/SnapCharts-Backend/internal/validation"
)

// MarketHandler handles HTTP requests for symbol search and chart data.
// It serves as the HTTP layer adapter, parsing requests and delegating
// to the marketService.
type MarketHandler struct {
	marketService *service.MarketService
}

// NewMarketHandler creates a new MarketHandler with the provided service dependency.
func NewMarketHandler(marketService *service.MarketService) *MarketHandler {
	return &MarketHandler{
		marketService: marketService,
	}
}

// Search handles GET requests searching for ticker symbols.
//
// Endpoint: GET /api/search?q={query}
// Response: 200 OK with array of Asset (empty when q is blank)
// Error: 400 Bad Request if the query is too long
// Error: 502 Bad Gateway if the provider request fails
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := validation.ValidateSearchQuery(q); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	assets, err := h.marketService.Search(r.Context(), q)
	if err != nil {
		respondProviderError(w, apperrors.ErrFailedToSearch.Error(), err)
		return
	}

	respondJSON(w, http.StatusOK, assets)
}

// Chart handles GET requests for the bars of one symbol.
//
// Endpoint: GET /api/chart/{symbol}?range={token}
// The range accepts provider tokens ("5d") and picker labels ("1W");
// it defaults to one month and unknown values fall back to that default.
// Response: 200 OK with ChartData
// Error: 400 Bad Request if the symbol is blank
// Error: 502 Bad Gateway if the provider request fails
func (h *MarketHandler) Chart(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	data, err := h.marketService.Chart(r.Context(), symbol, r.URL.Query().Get("range"))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSymbol) {
			response.RespondError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		respondProviderError(w, apperrors.ErrFailedToRetrieveBars.Error(), err)
		return
	}

	respondJSON(w, http.StatusOK, data)
}

// Ranges handles GET requests for the chart range picker options.
//
// Endpoint: GET /api/chart/ranges
// Response: 200 OK with array of RangeOption in display order
func (h *MarketHandler) Ranges(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.marketService.Ranges())
}
