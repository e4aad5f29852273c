package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/SnapCharts-Backend/internal/apperrors"
	"github.com/ndewijer/SnapCharts-Backend/internal/model"
)

// FavoriteRepository provides data access methods for the favorite table.
type FavoriteRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewFavoriteRepository creates a new FavoriteRepository with the provided database connection.
func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// WithTx returns a copy of the repository that runs its statements in tx.
func (r *FavoriteRepository) WithTx(tx *sql.Tx) *FavoriteRepository {
	return &FavoriteRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *FavoriteRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const favoriteColumns = `id, symbol, name, created_at, last_price, last_price_at`

// ListFavorites retrieves every favorite, most recently added first.
// Returns an empty slice if there are none.
func (r *FavoriteRepository) ListFavorites(ctx context.Context) ([]model.Favorite, error) {
	query := `SELECT ` + favoriteColumns + `
		FROM favorite
		ORDER BY created_at DESC, symbol ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite table: %w", err)
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite table: %w", err)
	}
	return favorites, nil
}

// GetFavorite retrieves a favorite by its (uppercase) symbol.
// Returns ErrFavoriteNotFound if the symbol is not on the watch list.
func (r *FavoriteRepository) GetFavorite(ctx context.Context, symbol string) (model.Favorite, error) {
	query := `SELECT ` + favoriteColumns + ` FROM favorite WHERE symbol = ?`

	f, err := scanFavorite(r.getQuerier().QueryRowContext(ctx, query, symbol))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Favorite{}, apperrors.ErrFavoriteNotFound
	}
	if err != nil {
		return model.Favorite{}, err
	}
	return f, nil
}

// Exists reports whether symbol is on the watch list.
func (r *FavoriteRepository) Exists(ctx context.Context, symbol string) (bool, error) {
	var exists bool
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorite WHERE symbol = ?)`, symbol,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// InsertFavorite stores f. Returns ErrDuplicateEntry when the symbol is already present.
func (r *FavoriteRepository) InsertFavorite(ctx context.Context, f *model.Favorite) error {
	query := `
        INSERT INTO favorite (id, symbol, name, created_at, last_price, last_price_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `

	var lastPriceAt *string
	if f.LastPriceAt != nil {
		s := FormatTime(*f.LastPriceAt)
		lastPriceAt = &s
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		f.ID,
		f.Symbol,
		f.Name,
		FormatTime(f.CreatedAt),
		f.LastPrice,
		lastPriceAt,
	)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	return nil
}

// DeleteFavorite removes symbol from the watch list.
// Returns ErrFavoriteNotFound if nothing was deleted.
func (r *FavoriteRepository) DeleteFavorite(ctx context.Context, symbol string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM favorite WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrFavoriteNotFound
	}
	return nil
}

// UpdateLastPrice stores the most recent close for symbol.
// Returns ErrFavoriteNotFound if the favorite was removed in the meantime.
func (r *FavoriteRepository) UpdateLastPrice(ctx context.Context, symbol string, price float64, at time.Time) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`UPDATE favorite SET last_price = ?, last_price_at = ? WHERE symbol = ?`,
		price, FormatTime(at), symbol,
	)
	if err != nil {
		return fmt.Errorf("failed to update favorite price: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrFavoriteNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFavorite(s scanner) (model.Favorite, error) {
	var f model.Favorite
	var name, createdAt, lastPriceAt sql.NullString
	var lastPrice sql.NullFloat64

	err := s.Scan(&f.ID, &f.Symbol, &name, &createdAt, &lastPrice, &lastPriceAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Favorite{}, err
	}
	if err != nil {
		return model.Favorite{}, fmt.Errorf("failed to scan favorite: %w", err)
	}

	if name.Valid {
		f.Name = &name.String
	}
	if createdAt.Valid {
		f.CreatedAt, err = ParseTime(createdAt.String)
		if err != nil {
			return model.Favorite{}, err
		}
	}
	if lastPrice.Valid {
		f.LastPrice = &lastPrice.Float64
	}
	if lastPriceAt.Valid {
		t, err := ParseTime(lastPriceAt.String)
		if err != nil {
			return model.Favorite{}, err
		}
		f.LastPriceAt = &t
	}
	return f, nil
}
