package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
	"github.com/ndewijer/SnapCharts-Backend/internal/repository"
)

// FavoriteBuilder provides a fluent interface for creating test favorites.
//
// Example usage:
//
//	// Simple creation with defaults
//	fav := testutil.NewFavorite().Build(t, db)
//
//	// Customized favorite
//	fav := testutil.NewFavorite().
//	    WithSymbol("AAPL").
//	    WithName("Apple Inc.").
//	    WithLastPrice(189.5, time.Now()).
//	    Build(t, db)
type FavoriteBuilder struct {
	ID          string
	Symbol      string
	Name        *string
	CreatedAt   time.Time
	LastPrice   *float64
	LastPriceAt *time.Time
}

// NewFavorite creates a FavoriteBuilder with sensible defaults.
func NewFavorite() *FavoriteBuilder {
	name := MakeSymbolName("Test Asset")
	return &FavoriteBuilder{
		ID:        MakeID(),
		Symbol:    MakeSymbol("TST"),
		Name:      &name,
		CreatedAt: time.Now().UTC(),
	}
}

// WithSymbol sets a custom symbol.
func (b *FavoriteBuilder) WithSymbol(symbol string) *FavoriteBuilder {
	b.Symbol = symbol
	return b
}

// WithName sets a custom display name.
func (b *FavoriteBuilder) WithName(name string) *FavoriteBuilder {
	b.Name = &name
	return b
}

// WithoutName stores the favorite with a NULL name.
func (b *FavoriteBuilder) WithoutName() *FavoriteBuilder {
	b.Name = nil
	return b
}

// WithCreatedAt sets when the favorite was added.
func (b *FavoriteBuilder) WithCreatedAt(at time.Time) *FavoriteBuilder {
	b.CreatedAt = at
	return b
}

// WithLastPrice sets a previously refreshed price.
func (b *FavoriteBuilder) WithLastPrice(price float64, at time.Time) *FavoriteBuilder {
	b.LastPrice = &price
	b.LastPriceAt = &at
	return b
}

// Build inserts the favorite and returns it as stored.
func (b *FavoriteBuilder) Build(t *testing.T, db *sql.DB) model.Favorite {
	t.Helper()

	f := model.Favorite{
		ID:          b.ID,
		Symbol:      b.Symbol,
		Name:        b.Name,
		CreatedAt:   b.CreatedAt,
		LastPrice:   b.LastPrice,
		LastPriceAt: b.LastPriceAt,
	}

	repo := repository.NewFavoriteRepository(db)
	if err := repo.InsertFavorite(context.Background(), &f); err != nil {
		t.Fatalf("Failed to create favorite: %v", err)
	}

	stored, err := repo.GetFavorite(context.Background(), f.Symbol)
	if err != nil {
		t.Fatalf("Failed to read back favorite: %v", err)
	}
	return stored
}

// CreateFavorite is a shortcut for NewFavorite().WithSymbol(symbol).Build(t, db).
func CreateFavorite(t *testing.T, db *sql.DB, symbol string) model.Favorite {
	t.Helper()
	return NewFavorite().WithSymbol(symbol).Build(t, db)
}

// CreateFavorites creates count favorites, each added one minute after the previous.
func CreateFavorites(t *testing.T, db *sql.DB, count int) []model.Favorite {
	t.Helper()

	base := time.Now().UTC().Add(-time.Duration(count) * time.Minute)
	favorites := make([]model.Favorite, count)
	for i := range count {
		favorites[i] = NewFavorite().
			WithCreatedAt(base.Add(time.Duration(i) * time.Minute)).
			Build(t, db)
	}
	return favorites
}

// MakeBars builds count daily bars ending at end, closing at start, start+1, ...
func MakeBars(count int, start float64, end time.Time) []model.Bar {
	bars := make([]model.Bar, count)
	for i := range count {
		c := start + float64(i)
		bars[i] = model.Bar{
			Time:   end.AddDate(0, 0, i-count+1).UTC(),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 * float64(i+1),
		}
	}
	return bars
}

// fixedBarEnd anchors default mock bars so assertions are deterministic.
var fixedBarEnd = time.Date(2024, time.March, 8, 21, 0, 0, 0, time.UTC)
