// Command update appends a free-form execution note to a journal day, for
// example "moved stop to breakeven after TP1".
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
	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/logging"
	"btc-journal-lab/internal/marketdata"
	"btc-journal-lab/internal/storage"
)

func main() {
	configPath := flag.String("config", "journal.yaml", "Path to the YAML config file")
	date := flag.String("date", "", "ET date to annotate (default today ET)")
	text := flag.String("text", "", "Note text (required)")
	source := flag.String("source", "cli", "Note source label")
	flag.Parse()

	_ = godotenv.Load()

	if *text == "" {
		fmt.Fprintln(os.Stderr, "Error: -text is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Must(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	noteDate := *date
	if noteDate == "" {
		noteDate = marketdata.TodayET(time.Now())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Error("open stores", zap.Error(err))
		os.Exit(1)
	}
	defer stores.Close()

	note := domain.LogNote{
		TsMs:   time.Now().UnixMilli(),
		Source: *source,
		Text:   *text,
	}
	if err := stores.Journal.AppendNote(ctx, noteDate, note); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Error("no journal entry for date, run plan first", zap.String("date", noteDate))
		} else {
			log.Error("append note failed", zap.String("date", noteDate), zap.Error(err))
		}
		os.Exit(1)
	}

	log.Info("note appended", zap.String("date", noteDate), zap.String("source", *source))
}
