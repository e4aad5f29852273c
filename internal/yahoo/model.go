package yahoo

import (
	"bytes"
	"encoding/json"
)

// Opt is a value that may be absent. The chart endpoint reports market gaps
// as JSON null inside otherwise dense arrays; Opt keeps that distinction
// instead of collapsing null into a zero price.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Valid: true}
}

// None returns an absent Opt.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// UnmarshalJSON decodes null as an absent value.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Opt[T]{Value: v, Valid: true}
	return nil
}

// MarshalJSON encodes an absent value as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// SearchResponse is the body of the symbol search endpoint.
// Quotes is a pointer so a body without the key is told apart from an empty list.
type SearchResponse struct {
	Quotes *[]SearchQuote `json:"quotes"`
}

// SearchQuote is one matched instrument in a search response.
type SearchQuote struct {
	Symbol    string  `json:"symbol"`
	ShortName *string `json:"shortname"`
	LongName  *string `json:"longname"`
	Exchange  *string `json:"exchange"`
	TypeDisp  *string `json:"typeDisp"`
}

// Response is the body of the chart endpoint. Exactly one of Chart.Result and
// Chart.Error is normally populated.
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart wraps the result list or the provider error object.
type Chart struct {
	Result []Result    `json:"result"`
	Error  *ChartError `json:"error"`
}

// ChartError is the provider-level error object, e.g.
// {"code": "Not Found", "description": "No data found, symbol may be delisted"}.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result holds one symbol's chart: metadata, the timestamp axis and the
// indicator columns aligned to it by index.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta is the subset of chart metadata the service reads.
type Meta struct {
	Currency          string `json:"currency"`
	Symbol            string `json:"symbol"`
	ExchangeName      string `json:"exchangeName"`
	FullExchangeName  string `json:"fullExchangeName"`
	InstrumentType    string `json:"instrumentType"`
	FirstTradeDate    *int64 `json:"firstTradeDate"`
	RegularMarketTime *int64 `json:"regularMarketTime"`
	GmtOffset         int    `json:"gmtoffset"`
	Timezone          string `json:"timezone"`
	DataGranularity   string `json:"dataGranularity"`
	Range             string `json:"range"`
}

// IndicatorsContainer carries the OHLCV column sets. Only the first quote
// entry is used.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds parallel OHLCV columns. A nil column means the provider omitted it.
type Quote struct {
	Open   []Opt[float64] `json:"open"`
	High   []Opt[float64] `json:"high"`
	Low    []Opt[float64] `json:"low"`
	Close  []Opt[float64] `json:"close"`
	Volume []Opt[float64] `json:"volume"`
}
