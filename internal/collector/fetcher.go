package collector

import (
	"context"
	"time"

	"EHR999/internal/model"
)

// KlineRequest asks for up to Limit bars with open time >= StartTime.
type KlineRequest struct {
	Symbol    string
	Interval  string
	StartTime time.Time
	Limit     int
}

// Fetcher defines the interface for fetching one page of market data.
type Fetcher interface {
	FetchKlines(ctx context.Context, req KlineRequest) ([]model.Bar, error)
	Name() string
}
