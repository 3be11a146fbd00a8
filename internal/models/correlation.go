package models

// CorrelationResult is the per-ticker outcome of the sentiment/return
// correlation. Pearson is NaN when the filtered input is empty or either
// series has zero variance.
type CorrelationResult struct {
	Ticker  string
	LagDays int
	NObs    int
	Pearson float64
}
