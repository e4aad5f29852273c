package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/SnapCharts-Backend/internal/api/request"
	"github.com/ndewijer/SnapCharts-Backend/internal/apperrors"
	"github.com/ndewijer/SnapCharts-Backend/internal/model"
	"github.com/ndewijer/SnapCharts-Backend/internal/repository"
)

// FavoriteService handles the user's watch list.
type FavoriteService struct {
	db           *sql.DB
	favoriteRepo *repository.FavoriteRepository
}

// NewFavoriteService creates a new FavoriteService with the provided repository dependencies.
func NewFavoriteService(db *sql.DB, favoriteRepo *repository.FavoriteRepository) *FavoriteService {
	return &FavoriteService{
		db:           db,
		favoriteRepo: favoriteRepo,
	}
}

// NormalizeSymbol trims and uppercases a ticker so "aapl " and "AAPL" are one favorite.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// List returns all favorites, most recently added first.
func (s *FavoriteService) List(ctx context.Context) ([]model.Favorite, error) {
	return s.favoriteRepo.ListFavorites(ctx)
}

// Get returns the favorite stored for symbol or ErrFavoriteNotFound.
func (s *FavoriteService) Get(ctx context.Context, symbol string) (model.Favorite, error) {
	return s.favoriteRepo.GetFavorite(ctx, NormalizeSymbol(symbol))
}

// IsFavorite reports whether symbol is on the watch list.
func (s *FavoriteService) IsFavorite(ctx context.Context, symbol string) (model.FavoriteStatus, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return model.FavoriteStatus{}, apperrors.ErrInvalidSymbol
	}

	exists, err := s.favoriteRepo.Exists(ctx, symbol)
	if err != nil {
		return model.FavoriteStatus{}, err
	}
	return model.FavoriteStatus{Symbol: symbol, Favorited: exists}, nil
}

// Add puts a symbol on the watch list.
// Returns ErrDuplicateEntry when it is already there.
func (s *FavoriteService) Add(ctx context.Context, req request.CreateFavoriteRequest) (*model.Favorite, error) {
	favorite := newFavorite(req.Symbol, req.Name)
	if favorite.Symbol == "" {
		return nil, apperrors.ErrInvalidSymbol
	}

	if err := s.favoriteRepo.InsertFavorite(ctx, favorite); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	return favorite, nil
}

// Remove takes symbol off the watch list.
// Returns ErrFavoriteNotFound when it was not there.
func (s *FavoriteService) Remove(ctx context.Context, symbol string) error {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return apperrors.ErrInvalidSymbol
	}
	return s.favoriteRepo.DeleteFavorite(ctx, symbol)
}

// Toggle flips the favorite state of symbol inside one transaction and
// returns the resulting state. name is stored only when the symbol is added.
func (s *FavoriteService) Toggle(ctx context.Context, symbol string, name *string) (model.FavoriteStatus, error) {
	favorite := newFavorite(symbol, name)
	if favorite.Symbol == "" {
		return model.FavoriteStatus{}, apperrors.ErrInvalidSymbol
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.FavoriteStatus{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	repo := s.favoriteRepo.WithTx(tx)

	exists, err := repo.Exists(ctx, favorite.Symbol)
	if err != nil {
		return model.FavoriteStatus{}, err
	}

	if exists {
		err = repo.DeleteFavorite(ctx, favorite.Symbol)
	} else {
		err = repo.InsertFavorite(ctx, favorite)
	}
	if err != nil {
		return model.FavoriteStatus{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.FavoriteStatus{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return model.FavoriteStatus{Symbol: favorite.Symbol, Favorited: !exists}, nil
}

func newFavorite(symbol string, name *string) *model.Favorite {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}
	return &model.Favorite{
		ID:        uuid.New().String(),
		Symbol:    NormalizeSymbol(symbol),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
