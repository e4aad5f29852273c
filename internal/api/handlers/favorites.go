package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/SnapCharts-Backend/internal/api/request"
	"github.com/ndewijer/SnapCharts-Backend/internal/api/response"
	"github.com/ndewijer/SnapCharts-Backend/internal/apperrors"
	"github.com/ndewijer/SnapCharts-Backend/internal/service"
	"github.com/ndewijer/SnapCharts-Backend/internal/validation"
)

// FavoriteHandler handles HTTP requests for the watch list.
type FavoriteHandler struct {
	favoriteService *service.FavoriteService
	refresher       *service.PriceRefresher
}

// NewFavoriteHandler creates a new FavoriteHandler with the provided service dependencies.
func NewFavoriteHandler(favoriteService *service.FavoriteService, refresher *service.PriceRefresher) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		refresher:       refresher,
	}
}

// Favorites handles GET requests to list the watch list.
//
// Endpoint: GET /api/favorite
// Response: 200 OK with array of Favorite, most recently added first
// Error: 500 Internal Server Error if retrieval fails
func (h *FavoriteHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.favoriteService.List(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveFavorites.Error(), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, favorites)
}

// CreateFavorite handles POST requests adding a symbol to the watch list.
//
// Endpoint: POST /api/favorite
// Request: {"symbol": "AAPL", "name": "Apple Inc."}
// Response: 201 Created with Favorite
// Error: 400 Bad Request on invalid body, 409 Conflict if already a favorite
func (h *FavoriteHandler) CreateFavorite(w http.ResponseWriter, r *http.Request) {
	var req request.CreateFavoriteRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateFavorite(req); err != nil {
		respondValidationError(w, err)
		return
	}

	favorite, err := h.favoriteService.Add(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicateEntry):
			response.RespondError(w, http.StatusConflict, "symbol is already a favorite", req.Symbol)
		case errors.Is(err, apperrors.ErrInvalidSymbol):
			response.RespondError(w, http.StatusBadRequest, err.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAddFavorite.Error(), err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, favorite)
}

// FavoriteStatus handles GET requests checking whether a symbol is a favorite.
//
// Endpoint: GET /api/favorite/{symbol}
// Response: 200 OK with FavoriteStatus
func (h *FavoriteHandler) FavoriteStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.favoriteService.IsFavorite(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSymbol) {
			response.RespondError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveFavorites.Error(), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// DeleteFavorite handles DELETE requests removing a symbol from the watch list.
//
// Endpoint: DELETE /api/favorite/{symbol}
// Response: 204 No Content
// Error: 400 Bad Request if the symbol is blank, 404 Not Found if it is not a favorite
func (h *FavoriteHandler) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	if err := h.favoriteService.Remove(r.Context(), symbol); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrFavoriteNotFound):
			response.RespondError(w, http.StatusNotFound, err.Error(), symbol)
		case errors.Is(err, apperrors.ErrInvalidSymbol):
			response.RespondError(w, http.StatusBadRequest, err.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRemoveFavorite.Error(), err.Error())
		}
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// ToggleFavorite handles POST requests flipping the favorite state of a symbol.
//
// Endpoint: POST /api/favorite/{symbol}/toggle
// Request: optional {"name": "Apple Inc."}, used when the symbol is added
// Response: 200 OK with the resulting FavoriteStatus
func (h *FavoriteHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req request.ToggleFavoriteRequest
	if err := decodeJSON(r, &req, true); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateToggleFavorite(req); err != nil {
		respondValidationError(w, err)
		return
	}

	status, err := h.favoriteService.Toggle(r.Context(), chi.URLParam(r, "symbol"), req.Name)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSymbol) {
			response.RespondError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to toggle favorite", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// RefreshPrices handles POST requests running the price refresher once.
//
// Endpoint: POST /api/favorite/refresh
// Response: 200 OK with RefreshSummary
// Error: 504 Gateway Timeout if the request deadline passes mid-run
// Error: 500 Internal Server Error if the watch list cannot be read
func (h *FavoriteHandler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	summary, err := h.refresher.RefreshAll(r.Context())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			response.RespondError(w, http.StatusGatewayTimeout, apperrors.ErrFailedToRefreshPrices.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRefreshPrices.Error(), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
