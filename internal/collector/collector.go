package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"EHR999/internal/model"
)

var (
	// ErrAcquisition marks a transport, status or decode failure while paging the upstream source.
	ErrAcquisition = errors.New("acquisition failed")
	// ErrEmptySeries is returned when the upstream source has no bars at all.
	ErrEmptySeries = errors.New("empty series")
)

// Acquisition is the result of a complete paginated fetch.
type Acquisition struct {
	Series model.Series
	Pages  int
}

// Collector pages through the full history of one symbol.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Interval string
	Limit    int
	Start    time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, interval string, limit int, start time.Time) *Collector {
	return &Collector{
		Fetcher:  fetcher,
		Symbol:   symbol,
		Interval: interval,
		Limit:    limit,
		Start:    start,
	}
}

// Collect fetches every bar from Start up to now and returns them deduplicated and sorted.
// Any page error discards everything fetched so far.
func (c *Collector) Collect(ctx context.Context) (*Acquisition, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("source", c.Fetcher.Name()).Str("interval", c.Interval).
		Time("start", c.Start).Msg("fetching full kline history")

	cursor := c.Start
	var all []model.Bar
	pages := 0

	for {
		page, err := c.Fetcher.FetchKlines(ctx, KlineRequest{
			Symbol:    c.Symbol,
			Interval:  c.Interval,
			StartTime: cursor,
			Limit:     c.Limit,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: page %d from %s: %w", ErrAcquisition, pages+1, cursor.Format(time.RFC3339), err)
		}
		pages++
		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		logger.Info().Int("page", pages).Int("bars", len(page)).Int("total", len(all)).Msg("page fetched")

		if len(page) < c.Limit {
			break
		}
		next := page[len(page)-1].OpenTime.Add(time.Millisecond)
		if !next.After(cursor) {
			return nil, fmt.Errorf("%w: cursor did not advance past %s", ErrAcquisition, cursor.Format(time.RFC3339))
		}
		cursor = next
	}

	series := Dedupe(all)
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s since %s", ErrEmptySeries, c.Symbol, c.Start.Format(time.DateOnly))
	}

	first, last := series.Span()
	logger.Info().Int("bars", len(series)).Int("pages", pages).
		Str("from", first.Format(time.DateOnly)).Str("to", last.Format(time.DateOnly)).
		Msg("history fetched")

	return &Acquisition{Series: series, Pages: pages}, nil
}

// Dedupe keeps the first bar for every open time and sorts the result ascending.
func Dedupe(bars []model.Bar) model.Series {
	seen := make(map[int64]struct{}, len(bars))
	out := make(model.Series, 0, len(bars))
	for _, b := range bars {
		key := b.OpenTime.UnixMilli()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OpenTime.Before(out[j].OpenTime) })
	return out
}
