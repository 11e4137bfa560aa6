// Command report rebuilds every published artifact from the stores: the
// dashboard, index, metrics and latest pages, the CSV export and the equity
// curve SVG. It also refreshes the trailing-window aggregate and verifies
// stored outcomes against the cached candles.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"btc-journal-lab/internal/app"
	"btc-journal-lab/internal/config"
	"btc-journal-lab/internal/logging"
	"btc-journal-lab/internal/metrics"
	"btc-journal-lab/internal/observability"
	"btc-journal-lab/internal/reporting"
	"btc-journal-lab/internal/verification"
)

func main() {
	configPath := flag.String("config", "journal.yaml", "Path to the YAML config file")
	outputDir := flag.String("output-dir", "", "Output directory (default from config)")
	verify := flag.Bool("verify", false, "Re-score stored outcomes from cached candles first")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Must(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	dir := *outputDir
	if dir == "" {
		dir = cfg.Reporting.OutputDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log, dir, *verify); err != nil {
		log.Error("report build failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, dir string, verify bool) error {
	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	if verify {
		verifier := verification.NewRescoreVerifier(stores.Journal, stores.Candles,
			cfg.MarketData.InstID, cfg.MarketData.Bar)
		report, err := verifier.VerifyAll(ctx)
		if err != nil {
			return fmt.Errorf("verify stored outcomes: %w", err)
		}
		log.Info("verification finished",
			zap.Int("total", report.TotalDays),
			zap.Int("matched", report.MatchedDays),
			zap.Int("divergent", report.DivergentDays),
			zap.Int("skipped", report.SkippedDays))
		for _, r := range report.Results {
			if r.Match {
				continue
			}
			log.Warn("stored outcome diverges from replay",
				zap.String("date", r.Date),
				zap.Any("divergences", r.Divergences))
		}
	}

	agg := metrics.NewAggregator(stores.Journal, stores.Aggregates)
	if _, err := agg.ComputeAndStore(ctx, cfg.Reporting.WindowDays, time.Now()); err != nil &&
		!errors.Is(err, metrics.ErrNoScoredDays) {
		return fmt.Errorf("refresh aggregate: %w", err)
	}

	gen := reporting.NewGenerator(stores.Journal, stores.Aggregates, cfg.Reporting.WindowDays)
	report, err := gen.WriteAll(ctx, dir)
	if err != nil {
		return err
	}
	observability.RecordReportGenerated()

	log.Info("report written",
		zap.String("dir", dir),
		zap.Int("rows", len(report.Rows)),
		zap.Int("scored", len(report.EquityCurve)))
	return nil
}
