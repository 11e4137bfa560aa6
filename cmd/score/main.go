// Command score replays one journal day against its candle window and
// attaches the outcome. By default it scores yesterday ET, matching the
// morning automation that reviews the prior session.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"btc-journal-lab/internal/app"
	"btc-journal-lab/internal/config"
	"btc-journal-lab/internal/logging"
	"btc-journal-lab/internal/marketdata"
	"btc-journal-lab/internal/observability"
	"btc-journal-lab/internal/scoring"
)

func main() {
	configPath := flag.String("config", "journal.yaml", "Path to the YAML config file")
	date := flag.String("date", "", "ET date to score (default yesterday ET)")
	forceRescore := flag.Bool("force-rescore", false, "Overwrite an existing outcome")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Must(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	scoreDate := *date
	if scoreDate == "" {
		scoreDate = marketdata.YesterdayET(time.Now())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log, scoreDate, *forceRescore); err != nil {
		log.Error("scoring run failed", zap.String("date", scoreDate), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, date string, force bool) error {
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

	status, err := runner.Score(ctx, date, force)
	if err != nil {
		observability.RecordScoringError("score")
		return err
	}
	observability.RecordDayScored(status.Disposition, float64(time.Now().Unix()))

	log.Info("scoring finished",
		zap.String("date", status.Date),
		zap.String("disposition", status.Disposition),
		zap.String("result", status.Result),
		zap.Float64("realized_r", status.RealizedR))
	return nil
}
