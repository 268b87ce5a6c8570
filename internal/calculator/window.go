package calculator

import "EHR999/internal/model"

// AdaptiveWindows sizes the short and long moving averages from the amount of history available.
// Short series can produce zero or negative windows; check the result with Windows.Valid.
func AdaptiveWindows(n int) model.Windows {
	var short int
	if n < 200 {
		short = min(50, n/4)
	} else {
		short = 200
	}

	maxLong := n * 6 / 10
	long := min(short*7, maxLong)
	if long < short+50 {
		long = min(short+50, n-10)
	}
	return model.Windows{Short: short, Long: long}
}
