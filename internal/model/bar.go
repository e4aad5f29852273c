package model

import "time"

// Bar is one OHLCV candle for a symbol. Every field is populated; bars with
// gaps in the provider data are never constructed.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// ChartData is a bar series for one symbol and range selection.
type ChartData struct {
	Symbol    string   `json:"symbol"`
	Range     string   `json:"range"`
	Interval  string   `json:"interval"`
	Bars      []Bar    `json:"bars"`
	LastClose *float64 `json:"lastClose"`
}

// RangeOption describes one entry of the chart range picker.
type RangeOption struct {
	Label    string `json:"label"`
	Token    string `json:"token"`
	Interval string `json:"interval"`
}
