package yahoo

import "github.com/ndewijer/SnapCharts-Backend/internal/model"

// DefaultRange is used when a caller does not pick a range.
const DefaultRange = "1mo"

// DefaultInterval is the bar size for range tokens the table does not know.
const DefaultInterval = "1d"

// RangeParams is the interval/range query pair understood by the chart endpoint.
type RangeParams struct {
	Interval string
	Range    string
}

// intervalByRange maps a provider range token to the bar interval used for it.
var intervalByRange = map[string]string{
	"1d":  "5m",
	"5d":  "15m",
	"1mo": "90m",
	"3mo": "1d",
	"6mo": "1d",
	"1y":  "1d",
	"2y":  "1wk",
	"5y":  "1wk",
	"10y": "1mo",
	"ytd": "1d",
	"max": "3mo",
}

// rangeOptions are the picker entries, in display order.
var rangeOptions = []struct {
	label string
	token string
}{
	{"1D", "1d"},
	{"1W", "5d"},
	{"1M", "1mo"},
	{"3M", "3mo"},
	{"6M", "6mo"},
	{"YTD", "ytd"},
	{"1Y", "1y"},
	{"2Y", "2y"},
	{"5Y", "5y"},
	{"10Y", "10y"},
	{"All", "max"},
}

// tokenByLabel resolves picker labels to provider tokens.
var tokenByLabel = func() map[string]string {
	m := make(map[string]string, len(rangeOptions))
	for _, o := range rangeOptions {
		m[o.label] = o.token
	}
	return m
}()

// IntervalForRange returns the bar interval for a provider range token.
// Unknown tokens get DefaultInterval.
func IntervalForRange(token string) string {
	if interval, ok := intervalByRange[token]; ok {
		return interval
	}
	return DefaultInterval
}

// ResolveRange maps a range token or picker label to the query pair sent to
// the chart endpoint. Anything unrecognised falls back to
// (DefaultInterval, DefaultRange).
func ResolveRange(token string) RangeParams {
	if interval, ok := intervalByRange[token]; ok {
		return RangeParams{Interval: interval, Range: token}
	}
	if t, ok := tokenByLabel[token]; ok {
		return RangeParams{Interval: intervalByRange[t], Range: t}
	}
	return RangeParams{Interval: DefaultInterval, Range: DefaultRange}
}

// RangeOptions lists the supported picker entries.
func RangeOptions() []model.RangeOption {
	opts := make([]model.RangeOption, 0, len(rangeOptions))
	for _, o := range rangeOptions {
		opts = append(opts, model.RangeOption{
			Label:    o.label,
			Token:    o.token,
			Interval: intervalByRange[o.token],
		})
	}
	return opts
}
