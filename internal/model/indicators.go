package model

import "time"

// Windows holds the short and long moving-average lookbacks.
type Windows struct {
	Short int
	Long  int
}

// Valid reports whether both windows can be computed over n bars.
func (w Windows) Valid(n int) bool {
	return w.Short >= 1 && w.Long >= 1 && w.Short <= n && w.Long <= n
}

// IndicatorPoint is one EHR999 observation.
type IndicatorPoint struct {
	Time    time.Time
	Close   float64
	ShortMA float64
	LongMA  float64
	Value   float64
}
