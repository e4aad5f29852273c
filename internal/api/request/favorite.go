package request

// CreateFavoriteRequest is the body of POST /api/favorite.
type CreateFavoriteRequest struct {
	Symbol string  `json:"symbol" validate:"required,symbol"`
	Name   *string `json:"name" validate:"omitempty,max=255"`
}

// ToggleFavoriteRequest is the optional body of POST /api/favorite/{symbol}/toggle.
// Name is stored only when the toggle adds the favorite.
type ToggleFavoriteRequest struct {
	Name *string `json:"name" validate:"omitempty,max=255"`
}
