package calculator

import (
	"errors"
	"fmt"
	"math"

	"EHR999/internal/model"
)

// ErrInsufficientHistory is returned when the series is too short to define both averages.
var ErrInsufficientHistory = errors.New("insufficient history")

// Oscillator returns (close/shortMA) * (close/longMA).
// ok is false when either average is undefined or zero, or the result is not finite.
func Oscillator(close, shortMA, longMA float64) (value float64, ok bool) {
	if math.IsNaN(shortMA) || math.IsNaN(longMA) || shortMA == 0 || longMA == 0 {
		return 0, false
	}
	value = (close / shortMA) * (close / longMA)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// ComputeEHR computes the EHR999 oscillator for every bar where both adaptive averages are defined.
// The returned points keep the series order. When no point can be produced the slice is empty
// and the error wraps ErrInsufficientHistory.
func ComputeEHR(series model.Series) ([]model.IndicatorPoint, model.Windows, error) {
	n := len(series)
	w := AdaptiveWindows(n)
	if !w.Valid(n) {
		return []model.IndicatorPoint{}, w, fmt.Errorf("%w: %d bars, windows short=%d long=%d", ErrInsufficientHistory, n, w.Short, w.Long)
	}

	closes := series.Closes()
	shortMA := RollingSMA(closes, w.Short)
	longMA := RollingSMA(closes, w.Long)

	first := max(w.Short, w.Long) - 1
	points := make([]model.IndicatorPoint, 0, n-first)
	for i := first; i < n; i++ {
		v, ok := Oscillator(closes[i], shortMA[i], longMA[i])
		if !ok {
			continue
		}
		points = append(points, model.IndicatorPoint{
			Time:    series[i].OpenTime,
			Close:   closes[i],
			ShortMA: shortMA[i],
			LongMA:  longMA[i],
			Value:   v,
		})
	}

	if len(points) == 0 {
		return points, w, fmt.Errorf("%w: no finite values over %d bars", ErrInsufficientHistory, n)
	}
	return points, w, nil
}
