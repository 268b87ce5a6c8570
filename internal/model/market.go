package model

import "time"

// Bar represents a single daily OHLCV candlestick.
type Bar struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Series is a list of bars unique by OpenTime and sorted ascending.
type Series []Bar

// Closes returns the close prices in series order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Latest returns the last bar, or false for an empty series.
func (s Series) Latest() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Span returns the open time of the first and last bar.
func (s Series) Span() (first, last time.Time) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}
	}
	return s[0].OpenTime, s[len(s)-1].OpenTime
}
