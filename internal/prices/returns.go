package prices

import (
	"time"

	"newslens/internal/models"
)

// ComputeReturns fills Return1D in place: (close[i]-close[i-1])/close[i-1].
// The first bar (and any bar following a zero close) keeps a nil return.
func ComputeReturns(bars []models.PriceBar) {
	for i := range bars {
		if i == 0 {
			bars[i].Return1D = nil
			continue
		}
		prev := bars[i-1].Close
		if prev.IsZero() {
			bars[i].Return1D = nil
			continue
		}
		r := bars[i].Close.Sub(prev).Div(prev).InexactFloat64()
		bars[i].Return1D = &r
	}
}

func unixDay(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
