package models

import (
	"time"
)

// NewsRecord is one cleaned row of the input news table. Immutable once loaded.
type NewsRecord struct {
	Headline    string
	URL         string
	Publisher   string
	PublishedAt time.Time // timezone-aware; naive inputs are taken as UTC
	Day         time.Time // calendar day of PublishedAt, UTC midnight
	Stock       string    // upper-case, trimmed ticker
}

// ScoredHeadline is a NewsRecord plus its polarity score, one-to-one.
type ScoredHeadline struct {
	NewsRecord
	Sentiment float64 // in [-1, 1]
}

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats a calendar day for map keys and CSV cells.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
