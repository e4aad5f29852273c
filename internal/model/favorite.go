package model

import "time"

// Favorite is a symbol the user pinned to their watch list.
// LastPrice and LastPriceAt are filled in by the price refresher.
type Favorite struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	Name        *string    `json:"name"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastPrice   *float64   `json:"lastPrice"`
	LastPriceAt *time.Time `json:"lastPriceAt"`
}

// FavoriteStatus reports whether a symbol is on the watch list.
type FavoriteStatus struct {
	Symbol    string `json:"symbol"`
	Favorited bool   `json:"favorited"`
}

// RefreshSummary is the outcome of one price refresh run.
type RefreshSummary struct {
	Updated int `json:"updated"` // favorites that received a new price
	Skipped int `json:"skipped"` // favorites for which the provider returned no bars
	Failed  int `json:"failed"`  // favorites whose fetch or update failed
}
