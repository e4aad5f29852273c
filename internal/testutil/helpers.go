package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/ndewijer/SnapCharts-Backend/internal/repository"
	"github.com/ndewijer/SnapCharts-Backend/internal/service"
	"github.com/ndewijer/SnapCharts-Backend/internal/yahoo"
)

// NewTestFavoriteService wires a FavoriteService against db.
func NewTestFavoriteService(t *testing.T, db *sql.DB) *service.FavoriteService {
	t.Helper()

	return service.NewFavoriteService(db, repository.NewFavoriteRepository(db))
}

// NewTestMarketService wires a MarketService against client.
func NewTestMarketService(t *testing.T, client yahoo.Client) *service.MarketService {
	t.Helper()

	return service.NewMarketService(client)
}

// NewTestPriceRefresher wires a PriceRefresher with two workers.
func NewTestPriceRefresher(t *testing.T, db *sql.DB, client yahoo.Client, opts ...service.RefresherOption) *service.PriceRefresher {
	t.Helper()

	return service.NewPriceRefresher(repository.NewFavoriteRepository(db), client, 2, opts...)
}

// NewTestSystemService wires a SystemService with every feature enabled.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, map[string]bool{
		"favorites":     true,
		"live_search":   true,
		"price_refresh": true,
	})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeSymbolName generates a unique asset name for testing.
//
// Example usage:
//
//	name := testutil.MakeSymbolName("Tech Symbol")
//	// Returns: "Tech Symbol XYZ789"
func MakeSymbolName(base string) string {
	if base == "" {
		base = "Symbol"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
