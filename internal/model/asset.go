package model

// Asset is a tradable instrument returned by symbol search.
// Symbol is always non-empty; the remaining fields are optional.
type Asset struct {
	Symbol   string  `json:"symbol"`
	Name     *string `json:"name"`
	Exchange *string `json:"exchange"`
	Type     *string `json:"type"`
}
