package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"newslens/internal/models"
)

// NoDataError means the price source returned an empty series for a ticker.
// Fatal for that ticker's processing only.
type NoDataError struct {
	Ticker string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no price data returned for ticker %s", e.Ticker)
}

// Fetcher is the price-series collaborator consumed by the pipelines.
type Fetcher interface {
	DailyBars(ctx context.Context, ticker, window string) ([]models.PriceBar, error)
}

// Client fetches daily bars from a Yahoo-chart-format endpoint:
// GET {base}/v8/finance/chart/{ticker}?range={window}&interval=1d.
// Only the close price is consumed downstream.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		HTTP:    httpClient,
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) DailyBars(ctx context.Context, ticker, window string) ([]models.PriceBar, error) {
	if c == nil || c.HTTP == nil {
		return nil, fmt.Errorf("prices client not configured")
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("empty ticker")
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		c.BaseURL, url.PathEscape(ticker), url.QueryEscape(window))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, &NoDataError{Ticker: ticker}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("price fetch %s: http %d", ticker, resp.StatusCode)
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("price fetch %s: decode: %w", ticker, err)
	}
	if parsed.Chart.Error != nil {
		return nil, &NoDataError{Ticker: ticker}
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, &NoDataError{Ticker: ticker}
	}

	result := parsed.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		bars = append(bars, models.PriceBar{
			Date:  models.DayOf(unixDay(ts)),
			Close: decimal.NewFromFloat(*closes[i]),
		})
	}
	if len(bars) == 0 {
		return nil, &NoDataError{Ticker: ticker}
	}

	ComputeReturns(bars)
	return bars, nil
}
