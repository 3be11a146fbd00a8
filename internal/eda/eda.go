package eda

import (
	"regexp"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"newslens/internal/models"
)

// LengthStats describes the headline-length distribution, matching the
// usual describe() shape (sample stddev, linear-interpolated quantiles).
type LengthStats struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	Median float64
	P75    float64
	Max    float64
}

type CountRow struct {
	Key   string
	Count int
}

// HeadlineLengths computes character-length stats over all headlines.
func HeadlineLengths(records []models.NewsRecord) LengthStats {
	if len(records) == 0 {
		return LengthStats{}
	}
	lengths := make([]float64, len(records))
	for i, r := range records {
		lengths[i] = float64(len([]rune(r.Headline)))
	}
	sort.Float64s(lengths)
	s := LengthStats{
		Count: len(lengths),
		Mean:  stat.Mean(lengths, nil),
		Min:   lengths[0],
		Max:   lengths[len(lengths)-1],
	}
	if len(lengths) > 1 {
		s.Std = stat.StdDev(lengths, nil)
	}
	s.P25 = stat.Quantile(0.25, stat.LinInterp, lengths, nil)
	s.Median = stat.Quantile(0.5, stat.LinInterp, lengths, nil)
	s.P75 = stat.Quantile(0.75, stat.LinInterp, lengths, nil)
	return s
}

// Lengths returns the raw headline lengths, for histogram plotting.
func Lengths(records []models.NewsRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = float64(len([]rune(r.Headline)))
	}
	return out
}

// ArticlesPerDay counts articles per calendar day, chronologically.
func ArticlesPerDay(records []models.NewsRecord) []CountRow {
	counts := map[string]int{}
	for _, r := range records {
		counts[models.DayKey(r.Day)]++
	}
	out := make([]CountRow, 0, len(counts))
	for k, n := range counts {
		out = append(out, CountRow{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ArticlesByHour counts articles per UTC hour of day, 0..23, dense.
func ArticlesByHour(records []models.NewsRecord) [24]int {
	var out [24]int
	for _, r := range records {
		out[r.PublishedAt.UTC().Hour()]++
	}
	return out
}

// Weekdays in calendar order, Monday first, as the EDA reports them.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// ArticlesByWeekday counts articles per day of week, Monday first.
func ArticlesByWeekday(records []models.NewsRecord) []CountRow {
	counts := map[time.Weekday]int{}
	for _, r := range records {
		counts[r.PublishedAt.UTC().Weekday()]++
	}
	out := make([]CountRow, 0, len(Weekdays))
	for _, wd := range Weekdays {
		out = append(out, CountRow{Key: wd.String(), Count: counts[wd]})
	}
	return out
}

// TopPublishers counts articles per publisher, most prolific first.
// Ties break alphabetically so output is deterministic.
func TopPublishers(records []models.NewsRecord) []CountRow {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.Publisher]++
	}
	out := make([]CountRow, 0, len(counts))
	for k, n := range counts {
		out = append(out, CountRow{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

var domainRe = regexp.MustCompile(`@([^>\s]+)`)

// PublisherDomains extracts the domain from email-shaped publisher values
// and counts articles per domain, most frequent first. Publishers without
// an @ are ignored.
func PublisherDomains(records []models.NewsRecord) []CountRow {
	counts := map[string]int{}
	for _, r := range records {
		m := domainRe.FindStringSubmatch(r.Publisher)
		if m == nil {
			continue
		}
		counts[m[1]]++
	}
	out := make([]CountRow, 0, len(counts))
	for k, n := range counts {
		out = append(out, CountRow{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
