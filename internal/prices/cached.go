package prices

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"newslens/internal/models"
)

// CachedFetcher wraps a Fetcher with a per-run memo keyed (ticker, window)
// and a bounded retry with doubling backoff. Exploring several lag values
// against the same window then costs one fetch per ticker. NoDataError is
// a definitive answer and is not retried. Pipelines call Reset at the start
// of each run; long-lived holders would otherwise serve stale bars forever.
type CachedFetcher struct {
	Fetcher Fetcher
	Logger  *zap.Logger

	RetryMax     int
	RetryBackoff time.Duration

	mu    sync.Mutex
	cache map[string][]models.PriceBar
}

// Reset drops the memo so the next DailyBars call fetches fresh bars.
func (f *CachedFetcher) Reset() {
	if f == nil {
		return
	}
	f.mu.Lock()
	f.cache = nil
	f.mu.Unlock()
}

func (f *CachedFetcher) DailyBars(ctx context.Context, ticker, window string) ([]models.PriceBar, error) {
	if f == nil || f.Fetcher == nil {
		return nil, errors.New("fetcher not configured")
	}
	key := ticker + "|" + window

	f.mu.Lock()
	if f.cache == nil {
		f.cache = map[string][]models.PriceBar{}
	}
	if bars, ok := f.cache[key]; ok {
		f.mu.Unlock()
		return bars, nil
	}
	f.mu.Unlock()

	attempts := f.RetryMax
	if attempts <= 0 {
		attempts = 1
	}
	backoff := f.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var bars []models.PriceBar
	var err error
	for i := 0; i < attempts; i++ {
		bars, err = f.Fetcher.DailyBars(ctx, ticker, window)
		if err == nil {
			break
		}
		var nde *NoDataError
		if errors.As(err, &nde) || ctx.Err() != nil {
			return nil, err
		}
		if i == attempts-1 {
			break
		}
		if f.Logger != nil {
			f.Logger.Warn("price fetch failed, retrying",
				zap.String("ticker", ticker),
				zap.Duration("backoff", backoff),
				zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.cache[key] = bars
	f.mu.Unlock()
	return bars, nil
}
