package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrFavoriteNotFound indicates that the symbol is not on the watch list.
	ErrFavoriteNotFound = errors.New("favorite not found")

	// ErrSymbolNotFound indicates that the provider returned no data for a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidSymbol indicates that a ticker symbol is empty or malformed.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrInvalidRange indicates that a chart range token was rejected.
	ErrInvalidRange = errors.New("invalid range")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	// Market data errors
	ErrFailedToSearch        = errors.New("failed to search assets")
	ErrFailedToRetrieveBars  = errors.New("failed to retrieve chart data")
	ErrProviderUnavailable   = errors.New("quote provider unavailable")
	ErrFailedToRefreshPrices = errors.New("failed to refresh prices")

	// Favorite operation errors
	ErrFailedToRetrieveFavorites = errors.New("failed to retrieve favorites")
	ErrFailedToAddFavorite       = errors.New("failed to add favorite")
	ErrFailedToRemoveFavorite    = errors.New("failed to remove favorite")

	// System operation errors
	ErrFailedToGetVersionInfo = errors.New("failed to get version information")
)
