// Package reporting renders the journal into the markdown, CSV and SVG
// artifacts published after each run.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/metrics"
	"btc-journal-lab/internal/storage"
)

// Output file names under the report directory.
const (
	FileDashboard = "DASHBOARD.md"
	FileIndex     = "INDEX.md"
	FileMetrics   = "METRICS.md"
	FileLatest    = "LATEST.md"
	FileCSV       = "journal.csv"
	FileEquitySVG = "assets/equity.svg"
)

// Generator produces reports from stored journal data.
type Generator struct {
	journal    storage.JournalStore
	aggregates storage.AggregateStore
	windowDays int
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(journal storage.JournalStore, aggregates storage.AggregateStore, windowDays int) *Generator {
	return &Generator{
		journal:    journal,
		aggregates: aggregates,
		windowDays: windowDays,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the report from the journal and the metrics aggregator.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	entries, err := g.journal.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	report := &Report{
		GeneratedAt: g.now(),
		WindowDays:  g.windowDays,
		Rows:        make([]DayRow, 0, len(entries)),
	}

	var cum float64
	for _, e := range entries {
		report.Rows = append(report.Rows, dayRow(e))
		if e.Scored() {
			cum += e.RealizedR
			report.EquityCurve = append(report.EquityCurve, cum)
		}
	}
	if len(entries) > 0 {
		report.Latest = entries[len(entries)-1]
	}

	agg, err := metrics.NewAggregator(g.journal, g.aggregates).ComputeWindow(ctx, g.windowDays, g.now())
	if err != nil && !errors.Is(err, metrics.ErrNoScoredDays) {
		return nil, err
	}
	report.Window = agg

	return report, nil
}

// WriteAll generates the report and writes every artifact under dir.
func (g *Generator) WriteAll(ctx context.Context, dir string) (*Report, error) {
	report, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}

	files := map[string]string{
		FileDashboard: RenderDashboard(report),
		FileIndex:     RenderIndex(report),
		FileMetrics:   RenderMetrics(report),
		FileLatest:    RenderLatest(report),
		FileCSV:       RenderCSV(report.Rows),
		FileEquitySVG: RenderEquitySVG(report.EquityCurve),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create report dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return report, nil
}

func dayRow(e *domain.JournalEntry) DayRow {
	row := DayRow{
		Date:    e.Date,
		SpotUSD: e.SpotUSD,
		Scored:  e.Scored(),
		Result:  e.Result,
	}
	if e.Funding != nil {
		row.FundingRate = e.Funding.FundingRate
	}
	if e.Outcome != nil {
		row.Side = e.Outcome.TriggeredSide
		row.RealizedR = e.RealizedR
	}
	return row
}
