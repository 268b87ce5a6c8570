package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"EHR999/internal/model"
	"EHR999/internal/strategy"
)

// ChartScriptURL is the charting library loaded by the page at view time.
const ChartScriptURL = "https://unpkg.com/lightweight-charts@4.1.0/dist/lightweight-charts.standalone.production.js"

var (
	// ErrNothingToRender is returned when the snapshot has no indicator points.
	ErrNothingToRender = errors.New("no indicator points to render")
	// ErrReportWrite marks an I/O failure while writing the report artifact.
	ErrReportWrite = errors.New("write report")
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

type bandRow struct {
	model.MarketBand
	Range   string
	Current bool
}

type pageData struct {
	Symbol      string
	ChartScript string
	LatestClose float64
	LatestValue float64
	Band        model.MarketBand
	Windows     model.Windows
	UpdatedAt   string
	From        string
	To          string
	Points      []chartPoint
	Levels      []model.Level
	Rows        []bandRow
}

// Emitter renders snapshots to a static HTML file.
type Emitter struct {
	OutputPath string
}

// NewEmitter creates a new Emitter writing to outputPath.
func NewEmitter(outputPath string) *Emitter {
	return &Emitter{OutputPath: outputPath}
}

// Render produces the HTML document for a snapshot.
func Render(snap *Snapshot) ([]byte, error) {
	if snap == nil || len(snap.Points) == 0 {
		return nil, ErrNothingToRender
	}

	rows := make([]bandRow, len(strategy.Bands))
	for i, b := range strategy.Bands {
		rows[i] = bandRow{MarketBand: b, Range: bandRange(b), Current: b.Index == snap.Band.Index}
	}

	data := pageData{
		Symbol:      snap.Symbol,
		ChartScript: ChartScriptURL,
		LatestClose: snap.LatestClose,
		LatestValue: snap.LatestValue,
		Band:        snap.Band,
		Windows:     snap.Windows,
		UpdatedAt:   snap.LatestTime.Format("2006-01-02 15:04"),
		From:        snap.From.Format("2006-01-02"),
		To:          snap.To.Format("2006-01-02"),
		Points:      chartPoints(snap.Points),
		Levels:      strategy.Levels,
		Rows:        rows,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// Emit renders the snapshot and replaces the file at OutputPath. Nothing is written on failure.
func (e *Emitter) Emit(snap *Snapshot) (string, error) {
	html, err := Render(snap)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(e.OutputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	tmp, err := os.CreateTemp(dir, ".ehr999-*.html")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	if err := os.Rename(tmp.Name(), e.OutputPath); err != nil {
		return "", fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	return e.OutputPath, nil
}

func bandRange(b model.MarketBand) string {
	switch {
	case b.Index == 0:
		return fmt.Sprintf("< %.2f", b.Upper)
	case b.Index == len(strategy.Bands)-1:
		return fmt.Sprintf("> %.2f", b.Lower)
	default:
		return fmt.Sprintf("%.2f ~ %.2f", b.Lower, b.Upper)
	}
}
