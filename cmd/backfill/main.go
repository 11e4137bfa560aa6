// Command backfill scores a historical date range, then rebuilds the window
// aggregate and the published reports. Days already scored are skipped unless
// -force is set.
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
	"btc-journal-lab/internal/backfill"
	"btc-journal-lab/internal/config"
	"btc-journal-lab/internal/logging"
	"btc-journal-lab/internal/marketdata"
	"btc-journal-lab/internal/metrics"
	"btc-journal-lab/internal/reporting"
	"btc-journal-lab/internal/scoring"
)

func main() {
	configPath := flag.String("config", "journal.yaml", "Path to the YAML config file")
	startDate := flag.String("start", "", "First ET date to score (required)")
	endDate := flag.String("end", "", "Last ET date to score (default yesterday ET)")
	force := flag.Bool("force", false, "Re-score days that already have an outcome")
	flag.Parse()

	_ = godotenv.Load()

	if *startDate == "" {
		fmt.Fprintln(os.Stderr, "Error: -start is required (YYYY-MM-DD)")
		os.Exit(1)
	}
	if *endDate == "" {
		*endDate = marketdata.YesterdayET(time.Now())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Must(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	if err := run(ctx, cfg, log, *startDate, *endDate, *force); err != nil {
		log.Error("backfill failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, startDate, endDate string, force bool) error {
	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	client := marketdata.NewClient(
		marketdata.WithInstID(cfg.MarketData.InstID),
		marketdata.WithBar(cfg.MarketData.Bar),
		marketdata.WithLogger(log),
	)
	runner := scoring.NewRunner(stores.Journal, client,
		scoring.WithCandleCache(stores.Candles),
		scoring.WithSeries(cfg.MarketData.InstID, cfg.MarketData.Bar),
		scoring.WithLogger(log),
	)

	summary, err := backfill.New(runner, backfill.WithLogger(log)).Run(ctx, startDate, endDate, force)
	if err != nil {
		return err
	}
	for _, f := range summary.Failures {
		log.Warn("day not scored", zap.String("date", f.Date), zap.Error(f.Err))
	}

	// One aggregate and report rebuild at the end instead of per day.
	agg := metrics.NewAggregator(stores.Journal, stores.Aggregates)
	if _, err := agg.ComputeAndStore(ctx, cfg.Reporting.WindowDays, time.Now()); err != nil &&
		!errors.Is(err, metrics.ErrNoScoredDays) {
		return fmt.Errorf("rebuild aggregate: %w", err)
	}
	gen := reporting.NewGenerator(stores.Journal, stores.Aggregates, cfg.Reporting.WindowDays)
	if _, err := gen.WriteAll(ctx, cfg.Reporting.OutputDir); err != nil {
		return fmt.Errorf("rebuild reports: %w", err)
	}

	log.Info("backfill summary",
		zap.Int("days", summary.Days()),
		zap.Int("scored", summary.Scored),
		zap.Int("already_scored", summary.AlreadyScored),
		zap.Int("no_entry", summary.NoEntry),
		zap.Int("failed", summary.Failed))
	return nil
}
