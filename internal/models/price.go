package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is one daily bar of a ticker's price series. Return1D is the
// close-to-close percentage change from the prior bar; nil on the first bar.
type PriceBar struct {
	Date     time.Time // UTC midnight
	Close    decimal.Decimal
	Return1D *float64
}

// MergedRow is one row of the price-driven left join of a ticker's price
// series with its daily sentiment. Days without matching news keep nil
// sentiment fields; ShiftedReturn is populated only when a lag is applied.
type MergedRow struct {
	Date          time.Time
	Close         decimal.Decimal
	Return1D      *float64
	ShiftedReturn *float64
	SentimentMean *float64
	NArticles     *int
}
