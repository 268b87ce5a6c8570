package report

import (
	"time"

	"EHR999/internal/model"
)

// Snapshot is everything one run hands to the emitter.
type Snapshot struct {
	Symbol      string
	Points      []model.IndicatorPoint
	Windows     model.Windows
	Bars        int
	Band        model.MarketBand
	LatestClose float64
	LatestValue float64
	LatestTime  time.Time
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
}

// chartPoint is the lightweight-charts line series format.
type chartPoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

func chartPoints(points []model.IndicatorPoint) []chartPoint {
	out := make([]chartPoint, len(points))
	for i, p := range points {
		out[i] = chartPoint{Time: p.Time.Unix(), Value: p.Value}
	}
	return out
}
