package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EHR999/internal/calculator"
	"EHR999/internal/collector"
	"EHR999/internal/metrics"
	"EHR999/internal/model"
	"EHR999/internal/report"
)

type stubCollector struct {
	acq *collector.Acquisition
	err error
}

func (s *stubCollector) Collect(context.Context) (*collector.Acquisition, error) {
	return s.acq, s.err
}

func risingSeries(n int) model.Series {
	s := make(model.Series, n)
	day := time.Date(2017, 8, 17, 0, 0, 0, 0, time.UTC)
	for i := range s {
		c := 100 + float64(i)
		s[i] = model.Bar{OpenTime: day.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return s
}

func newTestRunner(t *testing.T, col Collector) (*Runner, string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "index.html")
	var buf bytes.Buffer
	r := New("ETHUSDT", col, report.NewEmitter(out), metrics.NewRecorder(filepath.Join(dir, "ehr999.prom"), "ETHUSDT"))
	r.Out = &buf
	return r, out, &buf
}

func TestRun_WritesReport(t *testing.T) {
	series := risingSeries(1000)
	r, out, buf := newTestRunner(t, &stubCollector{acq: &collector.Acquisition{Series: series, Pages: 1}})

	snap, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, 1000, snap.Bars)
	assert.Equal(t, model.Windows{Short: 200, Long: 600}, snap.Windows)
	assert.Len(t, snap.Points, 401)
	assert.Equal(t, series[999].Close, snap.LatestClose)
	assert.Equal(t, series[999].OpenTime, snap.LatestTime)
	assert.Equal(t, series[0].OpenTime, snap.From)
	assert.Greater(t, snap.LatestValue, 1.0)

	_, err = os.Stat(out)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ETHUSDT EHR999")
	assert.Contains(t, buf.String(), snap.Band.HeaderLabel)
}

func TestRun_AcquisitionFailureWritesNothing(t *testing.T) {
	cause := fmt.Errorf("%w: page 1: timeout", collector.ErrAcquisition)
	r, out, buf := newTestRunner(t, &stubCollector{err: cause})

	snap, err := r.Run(context.Background())
	require.ErrorIs(t, err, collector.ErrAcquisition)
	assert.Nil(t, snap)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, buf.String())
}

func TestRun_InsufficientHistoryWritesNothing(t *testing.T) {
	r, out, _ := newTestRunner(t, &stubCollector{acq: &collector.Acquisition{Series: risingSeries(5), Pages: 1}})

	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, calculator.ErrInsufficientHistory)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_ReportWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	r := New("ETHUSDT", &stubCollector{acq: &collector.Acquisition{Series: risingSeries(400), Pages: 1}},
		report.NewEmitter(filepath.Join(blocker, "index.html")), metrics.NewRecorder("", "ETHUSDT"))
	r.Out = nil

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, report.ErrReportWrite)
}

func TestRun_MetricsTextfileWrittenOnFailure(t *testing.T) {
	dir := t.TempDir()
	prom := filepath.Join(dir, "ehr999.prom")
	r := New("ETHUSDT", &stubCollector{err: collector.ErrEmptySeries},
		report.NewEmitter(filepath.Join(dir, "index.html")), metrics.NewRecorder(prom, "ETHUSDT"))

	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, collector.ErrEmptySeries)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ehr999_last_run_success{symbol="ETHUSDT"} 0`)
}
