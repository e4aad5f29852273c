package yahoo

import (
	"time"

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
)

// NormalizeBars turns one chart result into dense bars.
//
// The provider returns a timestamp axis plus independent OHLCV columns in
// which any cell may be null (market closed, halted, not yet traded). An index
// produces a bar only when it exists in every column and all five values are
// present; otherwise the whole index is dropped. Output keeps the order of the
// timestamp axis.
//
// A result without timestamps or without a quote entry yields no bars.
func NormalizeBars(result Result) []model.Bar {
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return []model.Bar{}
	}
	q := result.Indicators.Quote[0]

	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar, ok := q.barAt(i, ts)
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}
	return bars
}

// barAt builds the bar at index i, reporting false if any field is missing.
func (q Quote) barAt(i int, ts int64) (model.Bar, bool) {
	o, ok := cell(q.Open, i)
	if !ok {
		return model.Bar{}, false
	}
	h, ok := cell(q.High, i)
	if !ok {
		return model.Bar{}, false
	}
	l, ok := cell(q.Low, i)
	if !ok {
		return model.Bar{}, false
	}
	c, ok := cell(q.Close, i)
	if !ok {
		return model.Bar{}, false
	}
	v, ok := cell(q.Volume, i)
	if !ok {
		return model.Bar{}, false
	}
	return model.Bar{
		Time:   time.Unix(ts, 0).UTC(),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: v,
	}, true
}

func cell(col []Opt[float64], i int) (float64, bool) {
	if i >= len(col) {
		return 0, false
	}
	return col[i].Get()
}
