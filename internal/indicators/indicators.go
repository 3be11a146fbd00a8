package indicators

import (
	"math"
	"time"

	talib "github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"newslens/internal/models"
)

// Standard TA-Lib lookbacks: values before these indices are undefined.
const (
	smaPeriod  = 20
	rsiPeriod  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

// Row is one daily bar enriched with indicator values. Pointers are nil
// inside the indicator warm-up window.
type Row struct {
	Date       time.Time
	Close      float64
	SMA20      *float64
	RSI14      *float64
	MACD       *float64
	MACDSignal *float64
	MACDHist   *float64
	Return1D   *float64
}

// Report carries the enriched series and the Sharpe ratio of its daily
// returns (risk-free rate 0, sample stddev). Sharpe is nil when there are
// no returns or their variance is zero.
type Report struct {
	Rows   []Row
	Sharpe *float64
}

// Compute derives SMA-20, RSI-14 and MACD(12,26,9) from the close series.
func Compute(bars []models.PriceBar) Report {
	n := len(bars)
	if n == 0 {
		return Report{}
	}

	closes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close.InexactFloat64()
	}

	rows := make([]Row, n)
	for i := range bars {
		rows[i] = Row{
			Date:     bars[i].Date,
			Close:    closes[i],
			Return1D: bars[i].Return1D,
		}
	}

	if n >= smaPeriod {
		sma := talib.Sma(closes, smaPeriod)
		for i := smaPeriod - 1; i < n; i++ {
			v := sma[i]
			rows[i].SMA20 = &v
		}
	}
	if n > rsiPeriod {
		rsi := talib.Rsi(closes, rsiPeriod)
		for i := rsiPeriod; i < n; i++ {
			v := rsi[i]
			rows[i].RSI14 = &v
		}
	}
	if macdStart := macdSlow + macdSignal - 2; n > macdStart {
		macd, sig, hist := talib.Macd(closes, macdFast, macdSlow, macdSignal)
		for i := macdStart; i < n; i++ {
			m, s, h := macd[i], sig[i], hist[i]
			rows[i].MACD = &m
			rows[i].MACDSignal = &s
			rows[i].MACDHist = &h
		}
	}

	return Report{Rows: rows, Sharpe: sharpe(rows)}
}

func sharpe(rows []Row) *float64 {
	var returns []float64
	for _, r := range rows {
		if r.Return1D != nil {
			returns = append(returns, *r.Return1D)
		}
	}
	if len(returns) < 2 {
		return nil
	}
	sd := stat.StdDev(returns, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	v := stat.Mean(returns, nil) / sd
	return &v
}
