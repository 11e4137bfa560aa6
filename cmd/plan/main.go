// Command plan snapshots the market and writes today's conditional playbook
// into the journal. It refuses to run outside the 06:00-06:10 ET window
// unless forced, so a late manual run cannot silently replace the plan of
// record.
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
	"btc-journal-lab/internal/decision"
	"btc-journal-lab/internal/logging"
	"btc-journal-lab/internal/marketdata"
	"btc-journal-lab/internal/observability"
	"btc-journal-lab/internal/planner"
	"btc-journal-lab/internal/storage"
)

func main() {
	configPath := flag.String("config", "journal.yaml", "Path to the YAML config file")
	date := flag.String("date", "", "ET date to plan (default today ET)")
	force := flag.Bool("force", false, "Plan outside the morning run window")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Must(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	now := time.Now()
	planDate := *date
	if planDate == "" {
		planDate = marketdata.TodayET(now)
	}
	if !*force && !marketdata.InRunWindow(now) {
		log.Warn("outside the 06:00-06:10 ET run window, use -force to plan anyway",
			zap.String("date", planDate))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log, planDate, now); err != nil {
		log.Error("plan run failed", zap.String("date", planDate), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, date string, now time.Time) error {
	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		observability.RecordPlanError("storage")
		return err
	}
	defer stores.Close()

	client := newMarketClient(cfg, log)

	spot, err := client.SpotPrice(ctx)
	if err != nil {
		log.Warn("spot REST unavailable, falling back to ticker stream", zap.Error(err))
		spot, err = tickerSpot(ctx, cfg, log)
		if err != nil {
			observability.RecordPlanError("spot")
			return fmt.Errorf("fetch spot price: %w", err)
		}
	}

	// Funding is advisory: a failed snapshot degrades the gate, not the plan.
	funding, err := client.FundingSnapshot(ctx)
	if err != nil {
		log.Warn("funding snapshot unavailable", zap.Error(err))
		funding = nil
	}

	entry, err := planner.Build(cfg.Playbook, date, now.UnixMilli(), spot, funding)
	if err != nil {
		observability.RecordPlanError("build")
		return err
	}

	gate := decision.Evaluate(entry.Rules, funding)
	log.Info("funding gate evaluated",
		zap.String("stance", string(gate.Stance)),
		zap.Float64("funding", gate.Funding),
		zap.Bool("has_quote", gate.HasQuote))

	if err := stores.Journal.Insert(ctx, entry); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			log.Info("plan already exists for date", zap.String("date", date))
			return nil
		}
		observability.RecordPlanError("insert")
		return fmt.Errorf("persist plan: %w", err)
	}

	observability.RecordPlanGenerated(float64(now.Unix()))
	log.Info("playbook written",
		zap.String("date", date),
		zap.String("plan_id", entry.Plan.PlanID),
		zap.Float64("spot_usd", entry.SpotUSD),
		zap.String("stance", string(gate.Stance)))
	return nil
}

// tickerSpot waits for one tick from the OKX public stream and uses its last
// price as the spot snapshot.
func tickerSpot(ctx context.Context, cfg *config.Config, log *zap.Logger) (float64, error) {
	sub, err := marketdata.NewTickerSubscriber(ctx, marketdata.DefaultOKXWSURL,
		cfg.MarketData.InstID, nil, log)
	if err != nil {
		return 0, fmt.Errorf("open ticker stream: %w", err)
	}
	defer func() { _ = sub.Close() }()

	waitCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	select {
	case tick, ok := <-sub.Updates():
		if !ok {
			return 0, fmt.Errorf("ticker stream closed before first tick")
		}
		return tick.Last, nil
	case <-waitCtx.Done():
		return 0, fmt.Errorf("no tick within deadline: %w", waitCtx.Err())
	}
}

func newMarketClient(cfg *config.Config, log *zap.Logger) *marketdata.Client {
	opts := []marketdata.ClientOption{
		marketdata.WithInstID(cfg.MarketData.InstID),
		marketdata.WithBar(cfg.MarketData.Bar),
		marketdata.WithLogger(log),
	}
	if cfg.MarketData.OKXBaseURL != "" {
		opts = append(opts, marketdata.WithOKXBaseURL(cfg.MarketData.OKXBaseURL))
	}
	if cfg.MarketData.CoinbaseBaseURL != "" {
		opts = append(opts, marketdata.WithCoinbaseBaseURL(cfg.MarketData.CoinbaseBaseURL))
	}
	return marketdata.NewClient(opts...)
}
