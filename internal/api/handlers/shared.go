package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ndewijer/SnapCharts-Backend/internal/api/response"
	"github.com/ndewijer/SnapCharts-Backend/internal/validation"
	"github.com/ndewijer/SnapCharts-Backend/internal/yahoo"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 16

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data any) {
	response.RespondJSON(w, status, data)
}

// respondProviderError maps a failed quote provider call onto an HTTP status:
// provider network and decode failures are 502, timeouts 504, anything else 500.
func respondProviderError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		response.RespondError(w, http.StatusGatewayTimeout, message, err.Error())
	case errors.Is(err, yahoo.ErrNetwork), errors.Is(err, yahoo.ErrDecode):
		response.RespondError(w, http.StatusBadGateway, message, err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, message, err.Error())
	}
}

// respondValidationError writes field errors as details when err carries them.
func respondValidationError(w http.ResponseWriter, err error) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
