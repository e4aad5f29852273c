package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/SnapCharts-Backend/internal/api/request"
)

func TestValidateSymbol(t *testing.T) {
	valid := []string{"AAPL", "aapl", "^GSPC", "BRK-B", "EURUSD=X", "ASML.AS", "BTC-USD", "7203.T"}
	for _, s := range valid {
		t.Run("valid "+s, func(t *testing.T) {
			assert.NoError(t, ValidateSymbol(s))
		})
	}

	invalid := []string{"", "   ", "-AAPL", "=X", ".AS", "AA PL", "AAPL;DROP", "../etc", strings.Repeat("A", 21)}
	for _, s := range invalid {
		t.Run("invalid "+s, func(t *testing.T) {
			assert.ErrorIs(t, ValidateSymbol(s), ErrInvalidSymbol)
		})
	}
}

func TestValidateSearchQuery(t *testing.T) {
	assert.NoError(t, ValidateSearchQuery(""))
	assert.NoError(t, ValidateSearchQuery("apple inc"))
	assert.ErrorIs(t, ValidateSearchQuery(strings.Repeat("x", MaxQueryLength+1)), ErrQueryTooLong)
}

func TestValidateCreateFavorite(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		name := "Apple Inc."
		assert.NoError(t, ValidateCreateFavorite(request.CreateFavoriteRequest{Symbol: "AAPL", Name: &name}))
	})

	t.Run("missing symbol", func(t *testing.T) {
		err := ValidateCreateFavorite(request.CreateFavoriteRequest{})

		var vErr *Error
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "symbol is required", vErr.Fields["symbol"])
	})

	t.Run("malformed symbol and long name", func(t *testing.T) {
		name := strings.Repeat("n", 256)
		err := ValidateCreateFavorite(request.CreateFavoriteRequest{Symbol: "AA PL", Name: &name})

		var vErr *Error
		require.True(t, errors.As(err, &vErr))
		assert.Contains(t, vErr.Fields["symbol"], "ticker symbol")
		assert.Equal(t, "name must be 255 characters or less", vErr.Fields["name"])
	})
}

func TestValidateToggleFavorite(t *testing.T) {
	assert.NoError(t, ValidateToggleFavorite(request.ToggleFavoriteRequest{}))

	long := strings.Repeat("n", 300)
	assert.Error(t, ValidateToggleFavorite(request.ToggleFavoriteRequest{Name: &long}))
}

func TestError_Error(t *testing.T) {
	err := &Error{Fields: map[string]string{
		"symbol": "symbol is required",
		"name":   "name must be 255 characters or less",
	}}

	assert.Equal(t, "name: name must be 255 characters or less; symbol: symbol is required", err.Error())
}
