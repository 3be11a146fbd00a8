package sentiment

import (
	"sort"

	"newslens/internal/models"
)

// AggregateDaily groups scored headlines by (ticker, calendar day) and
// reduces each group to its mean polarity and article count. Pure function:
// the same input always yields the same output, sorted by ticker then date.
func AggregateDaily(scored []models.ScoredHeadline) []models.DailySentiment {
	type acc struct {
		ticker string
		day    string
		sum    float64
		n      int
	}

	groups := map[string]*acc{}
	for _, sh := range scored {
		key := sh.Stock + "|" + models.DayKey(sh.Day)
		g, ok := groups[key]
		if !ok {
			g = &acc{ticker: sh.Stock, day: models.DayKey(sh.Day)}
			groups[key] = g
		}
		g.sum += sh.Sentiment
		g.n++
	}

	out := make([]models.DailySentiment, 0, len(groups))
	for _, sh := range scored {
		key := sh.Stock + "|" + models.DayKey(sh.Day)
		g, ok := groups[key]
		if !ok {
			continue
		}
		delete(groups, key)
		out = append(out, models.DailySentiment{
			Ticker:        g.ticker,
			Date:          sh.Day,
			SentimentMean: g.sum / float64(g.n),
			NArticles:     g.n,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Ticker != out[j].Ticker {
			return out[i].Ticker < out[j].Ticker
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// FilterTicker returns the rows of daily belonging to ticker, in order.
func FilterTicker(daily []models.DailySentiment, ticker string) []models.DailySentiment {
	var out []models.DailySentiment
	for _, d := range daily {
		if d.Ticker == ticker {
			out = append(out, d)
		}
	}
	return out
}
