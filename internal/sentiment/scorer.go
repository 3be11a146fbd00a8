package sentiment

import (
	"github.com/jonreiter/govader"

	"newslens/internal/models"
)

// Scorer assigns a polarity in [-1, 1] to each headline using the VADER
// lexicon. A failure on one headline never aborts the batch: the row gets a
// neutral 0.0 instead.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score maps records to scored headlines one-to-one, preserving order.
func (s *Scorer) Score(records []models.NewsRecord) []models.ScoredHeadline {
	if s == nil || s.analyzer == nil {
		return nil
	}
	out := make([]models.ScoredHeadline, 0, len(records))
	for _, rec := range records {
		out = append(out, models.ScoredHeadline{
			NewsRecord: rec,
			Sentiment:  s.polarity(rec.Headline),
		})
	}
	return out
}

func (s *Scorer) polarity(text string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			score = 0.0
		}
	}()
	if text == "" {
		return 0.0
	}
	return clamp(s.analyzer.PolarityScores(text).Compound, -1.0, 1.0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
