package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"EHR999/internal/model"
)

const klinesEndpoint = "/api/v3/klines"

var errDecode = errors.New("decode klines")

// StatusError is a non-200 response from the upstream API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.Code, e.Body)
}

// BinanceOptions configures a BinanceFetcher.
type BinanceOptions struct {
	BaseURL           string
	Proxy             string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
}

// BinanceFetcher implements Fetcher using the Binance spot klines REST API.
type BinanceFetcher struct {
	BaseURL      string
	Client       *http.Client
	Limiter      *rate.Limiter
	Breaker      *gobreaker.CircuitBreaker
	MaxRetries   int
	RetryBackoff time.Duration
}

// NewBinanceFetcher creates a new fetcher with optional proxy support.
func NewBinanceFetcher(opts BinanceOptions) *BinanceFetcher {
	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	st := gobreaker.Settings{
		Name:     "binance-klines",
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &BinanceFetcher{
		BaseURL: opts.BaseURL,
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		Limiter:      rate.NewLimiter(limit, 1),
		Breaker:      gobreaker.NewCircuitBreaker(st),
		MaxRetries:   opts.MaxRetries,
		RetryBackoff: time.Second,
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// FetchKlines fetches one page, retrying with exponential backoff up to MaxRetries times.
func (f *BinanceFetcher) FetchKlines(ctx context.Context, req KlineRequest) ([]model.Bar, error) {
	endpoint := f.klinesURL(req)

	var lastErr error
	for attempt := 0; attempt <= f.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := f.RetryBackoff * time.Duration(1<<uint(attempt-1))
			zerolog.Ctx(ctx).Warn().Err(lastErr).Int("attempt", attempt).Dur("backoff", backoff).
				Msg("kline request failed, retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		bars, err := f.fetchPage(ctx, endpoint)
		if err == nil {
			return bars, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			break
		}
	}
	return nil, lastErr
}

func (f *BinanceFetcher) klinesURL(req KlineRequest) string {
	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("interval", req.Interval)
	params.Set("startTime", strconv.FormatInt(req.StartTime.UnixMilli(), 10))
	params.Set("limit", strconv.Itoa(req.Limit))
	return fmt.Sprintf("%s%s?%s", f.BaseURL, klinesEndpoint, params.Encode())
}

func (f *BinanceFetcher) fetchPage(ctx context.Context, endpoint string) ([]model.Bar, error) {
	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	res, err := f.Breaker.Execute(func() (any, error) {
		return f.doRequest(ctx, endpoint)
	})
	if err != nil {
		return nil, err
	}
	return res.([]model.Bar), nil
}

func (f *BinanceFetcher) doRequest(ctx context.Context, endpoint string) ([]model.Bar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}
	defer resp.Body.Close()

	if w := resp.Header.Get("X-MBX-USED-WEIGHT-1M"); w != "" {
		zerolog.Ctx(ctx).Debug().Str("used_weight_1m", w).Msg("binance weight")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var rows [][]any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", errDecode, err)
	}

	bars := make([]model.Bar, 0, len(rows))
	for i, row := range rows {
		bar, err := rowToBar(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", errDecode, i, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// rowToBar converts [open_time, open, high, low, close, volume, ...] into a Bar.
// Fields past volume carry no meaning here and are dropped.
func rowToBar(row []any) (model.Bar, error) {
	if len(row) < 6 {
		return model.Bar{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}
	ms, err := anyToInt64(row[0])
	if err != nil {
		return model.Bar{}, fmt.Errorf("open_time: %w", err)
	}
	var vals [5]float64
	for i := range vals {
		v, err := anyToFloat(row[i+1])
		if err != nil {
			return model.Bar{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return model.Bar{}, fmt.Errorf("field %d: %v is not a finite non-negative number", i+1, v)
		}
		vals[i] = v
	}
	return model.Bar{
		OpenTime: time.UnixMilli(ms).UTC(),
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}

func anyToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case string:
		return strconv.ParseFloat(n, 64)
	case json.Number:
		return strconv.ParseFloat(n.String(), 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func anyToInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, errDecode) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
