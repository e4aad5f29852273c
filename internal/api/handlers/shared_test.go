package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/SnapCharts-Backend/internal/apperrors"
	"github.com/ndewijer/SnapCharts-Backend/internal/yahoo"
)

// TestRespondJSON tests the respondJSON helper function.
// This is an internal test (package handlers, not handlers_test) because
// respondJSON is unexported.
func TestRespondJSON(t *testing.T) {
	t.Run("sets content-type and status code correctly", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "success"}

		respondJSON(w, 200, data)

		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", w.Header().Get("Content-Type"))
		}
	})

	t.Run("handles nil data without error", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondJSON(w, 204, nil)

		if w.Code != 204 {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
	})

	t.Run("handles un-encodable data gracefully", func(t *testing.T) {
		w := httptest.NewRecorder()

		// Channels cannot be JSON encoded
		data := map[string]any{
			"channel": make(chan int),
		}

		// Should not panic, just log the error
		respondJSON(w, 200, data)

		// Status should still be set even if encoding fails
		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		// Content-Type should still be set
		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type to be set")
		}
	})

	t.Run("encodes valid data successfully", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{
			"name":  "test",
			"value": "data",
		}

		respondJSON(w, 200, data)

		if w.Body.Len() == 0 {
			t.Error("Expected response body to contain JSON data")
		}

		body := w.Body.String()
		if body == "" {
			t.Error("Expected non-empty response body")
		}
	})
}

func TestRespondProviderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"network", &yahoo.NetworkError{Op: "chart", StatusCode: http.StatusServiceUnavailable}, http.StatusBadGateway},
		{"decode", &yahoo.DecodeError{Op: "search", Err: errors.New("bad")}, http.StatusBadGateway},
		{"wrapped network", fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveBars, &yahoo.NetworkError{Op: "chart", Err: errors.New("reset")}), http.StatusBadGateway},
		{"timeout", fmt.Errorf("%w: %w", apperrors.ErrFailedToSearch, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondProviderError(w, "failed", tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	t.Run("empty body allowed", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		require.NoError(t, decodeJSON(req, &b, true))
		assert.Empty(t, b.Name)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		assert.Error(t, decodeJSON(req, &b, false))
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
		assert.Error(t, decodeJSON(req, &b, true))
	})
}
