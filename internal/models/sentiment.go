package models

import "time"

// DailySentiment is the per-(ticker, day) aggregate of scored headlines.
// One row per key; derived and never mutated after creation.
type DailySentiment struct {
	Ticker        string
	Date          time.Time // UTC midnight
	SentimentMean float64
	NArticles     int
}
