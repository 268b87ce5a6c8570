package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EHR999/internal/model"
)

var day0 = time.Date(2017, 8, 17, 0, 0, 0, 0, time.UTC)

func seriesFromCloses(closes []float64) model.Series {
	s := make(model.Series, len(closes))
	for i, c := range closes {
		s[i] = model.Bar{
			OpenTime: day0.AddDate(0, 0, i),
			Open:     c, High: c, Low: c, Close: c,
			Volume: 1,
		}
	}
	return s
}

func naiveMean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func TestAdaptiveWindows_KnownSizes(t *testing.T) {
	tests := []struct {
		n     int
		short int
		long  int
	}{
		{5, 1, -5},
		{12, 3, 2},
		{60, 15, 50},
		{100, 25, 75},
		{200, 200, 190},
		{250, 200, 240},
		{1000, 200, 600},
		{3000, 200, 1400},
	}
	for _, tt := range tests {
		w := AdaptiveWindows(tt.n)
		assert.Equal(t, tt.short, w.Short, "short window for n=%d", tt.n)
		assert.Equal(t, tt.long, w.Long, "long window for n=%d", tt.n)
	}
}

func TestAdaptiveWindows_Deterministic(t *testing.T) {
	for n := 0; n < 3000; n += 7 {
		assert.Equal(t, AdaptiveWindows(n), AdaptiveWindows(n))
	}
}

func TestAdaptiveWindows_LongAtLeastShortFrom60(t *testing.T) {
	for n := 60; n < 200; n++ {
		w := AdaptiveWindows(n)
		assert.GreaterOrEqual(t, w.Long, w.Short, "n=%d", n)
	}
	for n := 250; n <= 5000; n++ {
		w := AdaptiveWindows(n)
		assert.GreaterOrEqual(t, w.Long, w.Short, "n=%d", n)
	}
}

func TestRollingSMA_Period3(t *testing.T) {
	got := RollingSMA([]float64{100, 102, 104, 103, 105}, 3)
	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 102.0, got[2], 1e-9)
	assert.InDelta(t, 103.0, got[3], 1e-9)
	assert.InDelta(t, 104.0, got[4], 1e-9)
}

func TestRollingSMA_InvalidWindow(t *testing.T) {
	for _, w := range []int{0, -3, 6} {
		got := RollingSMA([]float64{1, 2, 3, 4, 5}, w)
		for i, v := range got {
			assert.True(t, math.IsNaN(v), "window %d index %d", w, i)
		}
	}
}

func TestRollingSMA_MatchesNaiveMean(t *testing.T) {
	values := make([]float64, 500)
	for i := range values {
		values[i] = 50 + 30*math.Sin(float64(i)/17)
	}
	got := RollingSMA(values, 37)
	for i := 36; i < len(values); i++ {
		assert.InDelta(t, naiveMean(values[i-36:i+1]), got[i], 1e-9, "index %d", i)
	}
}

func TestRollingSMA_ConstantWindowAfterVaryingPrefix(t *testing.T) {
	values := make([]float64, 300)
	for i := range values {
		values[i] = 0.1 + 7*math.Sin(float64(i)/5)
	}
	for i := 200; i < len(values); i++ {
		values[i] = 0.3
	}
	got := RollingSMA(values, 50)
	for i := 249; i < len(values); i++ {
		assert.Equal(t, 0.3, got[i], "index %d", i)
	}
}

func TestOscillator(t *testing.T) {
	v, ok := Oscillator(120, 100, 80)
	require.True(t, ok)
	assert.InDelta(t, 1.8, v, 1e-12)

	_, ok = Oscillator(120, 0, 80)
	assert.False(t, ok)
	_, ok = Oscillator(120, 100, math.NaN())
	assert.False(t, ok)
	_, ok = Oscillator(math.Inf(1), 100, 80)
	assert.False(t, ok)
}

func TestComputeEHR_ConstantPrice(t *testing.T) {
	for _, n := range []int{250, 400, 1000, 1500, 3000} {
		for _, p := range []float64{100, 0.5, 2048, 0.1, 3.7, 1234.56, 0.07, 2987.13} {
			closes := make([]float64, n)
			for i := range closes {
				closes[i] = p
			}
			points, _, err := ComputeEHR(seriesFromCloses(closes))
			require.NoError(t, err)
			require.NotEmpty(t, points)
			for _, pt := range points {
				assert.Equal(t, p, pt.ShortMA)
				assert.Equal(t, p, pt.LongMA)
				assert.Equal(t, 1.0, pt.Value)
			}
		}
	}
}

func TestComputeEHR_RisingSeriesOf1000(t *testing.T) {
	closes := make([]float64, 1000)
	for i := range closes {
		closes[i] = 100 + 1000*float64(i)/999
	}
	series := seriesFromCloses(closes)

	points, w, err := ComputeEHR(series)
	require.NoError(t, err)
	assert.Equal(t, model.Windows{Short: 200, Long: 600}, w)
	require.Len(t, points, 1000-599)

	first := points[0]
	assert.Equal(t, series[599].OpenTime, first.Time)

	shortMA := naiveMean(closes[400:600])
	longMA := naiveMean(closes[0:600])
	want := (closes[599] / shortMA) * (closes[599] / longMA)
	assert.InDelta(t, shortMA, first.ShortMA, 1e-9)
	assert.InDelta(t, longMA, first.LongMA, 1e-9)
	assert.InDelta(t, want, first.Value, 1e-9)

	last := points[len(points)-1]
	assert.Equal(t, series[999].OpenTime, last.Time)
}

func TestComputeEHR_FiveBarsIsEmpty(t *testing.T) {
	points, w, err := ComputeEHR(seriesFromCloses([]float64{1, 2, 3, 4, 5}))
	require.ErrorIs(t, err, ErrInsufficientHistory)
	assert.NotNil(t, points)
	assert.Empty(t, points)
	assert.Equal(t, 1, w.Short)
	assert.Equal(t, -5, w.Long)
}

func TestComputeEHR_EmptySeries(t *testing.T) {
	points, _, err := ComputeEHR(nil)
	require.ErrorIs(t, err, ErrInsufficientHistory)
	assert.Empty(t, points)
}

func TestComputeEHR_ZeroPricesExcluded(t *testing.T) {
	// n=300 gives short=200, long=250; both averages stay zero until index 290.
	closes := make([]float64, 300)
	for i := range closes {
		if i >= 290 {
			closes[i] = 10
		}
	}
	series := seriesFromCloses(closes)
	points, w, err := ComputeEHR(series)
	require.NoError(t, err)
	assert.Equal(t, model.Windows{Short: 200, Long: 250}, w)
	require.Len(t, points, 10)
	assert.Equal(t, series[290].OpenTime, points[0].Time)
	for _, pt := range points {
		assert.False(t, math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0))
		assert.NotZero(t, pt.ShortMA)
		assert.NotZero(t, pt.LongMA)
	}
}

func TestComputeEHR_AllZeroIsInsufficient(t *testing.T) {
	points, _, err := ComputeEHR(seriesFromCloses(make([]float64, 300)))
	require.ErrorIs(t, err, ErrInsufficientHistory)
	assert.Empty(t, points)
}

func TestComputeEHR_TimesStrictlyIncreasing(t *testing.T) {
	closes := make([]float64, 700)
	for i := range closes {
		closes[i] = 1000 + 200*math.Cos(float64(i)/40)
	}
	points, _, err := ComputeEHR(seriesFromCloses(closes))
	require.NoError(t, err)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Time.After(points[i-1].Time))
	}
}
