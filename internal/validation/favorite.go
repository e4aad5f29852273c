package validation

import (
	"github.com/ndewijer/SnapCharts-Backend/internal/api/request"
)

func ValidateCreateFavorite(req request.CreateFavoriteRequest) error {
	return ValidateStruct(req)
}

func ValidateToggleFavorite(req request.ToggleFavoriteRequest) error {
	return ValidateStruct(req)
}
