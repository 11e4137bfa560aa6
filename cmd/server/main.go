// Command server exposes the journal over HTTP: the latest entry as JSON,
// the rendered dashboard, a live BTC price from the OKX ticker stream and
// Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"btc-journal-lab/internal/app"
	"btc-journal-lab/internal/config"
	"btc-journal-lab/internal/logging"
	"btc-journal-lab/internal/marketdata"
	"btc-journal-lab/internal/observability"
	"btc-journal-lab/internal/reporting"
	"btc-journal-lab/internal/storage"
)

func main() {
	configPath := flag.String("config", "journal.yaml", "Path to the YAML config file")
	listenAddr := flag.String("listen", "", "Listen address (default from config)")
	noTicker := flag.Bool("no-ticker", false, "Disable the live ticker stream")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Must(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	addr := *listenAddr
	if addr == "" {
		addr = cfg.Server.ListenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, addr, !*noTicker); err != nil {
		log.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, addr string, ticker bool) error {
	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	var sub *marketdata.TickerSubscriber
	if ticker {
		sub, err = marketdata.NewTickerSubscriber(ctx, marketdata.DefaultOKXWSURL,
			cfg.MarketData.InstID, nil, log)
		if err != nil {
			// The server is still useful without the stream.
			log.Warn("ticker stream unavailable", zap.Error(err))
		} else {
			defer func() { _ = sub.Close() }()
			go trackTicks(ctx, sub)
		}
	}

	srv := &server{
		stores:     stores,
		sub:        sub,
		windowDays: cfg.Reporting.WindowDays,
		log:        log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/latest.json", srv.handleLatest)
	mux.HandleFunc("/dashboard", srv.handleDashboard)
	mux.HandleFunc("/price", srv.handlePrice)
	mux.Handle("/metrics", observability.Handler())

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	log.Info("server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// trackTicks mirrors the live stream into the price gauge.
func trackTicks(ctx context.Context, sub *marketdata.TickerSubscriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-sub.Updates():
			if !ok {
				return
			}
			observability.DefaultMetrics.LastTickPrice.Set(tick.Last)
		}
	}
}

type server struct {
	stores     *app.Stores
	sub        *marketdata.TickerSubscriber
	windowDays int
	log        *zap.Logger
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *server) handleLatest(w http.ResponseWriter, r *http.Request) {
	entries, err := s.stores.Journal.ListAll(r.Context())
	if err != nil {
		s.fail(w, "list journal", err)
		return
	}
	if len(entries) == 0 {
		http.Error(w, "no journal entries", http.StatusNotFound)
		return
	}
	latest := entries[0]
	for _, e := range entries {
		if e.Date > latest.Date {
			latest = e
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(latest); err != nil {
		s.log.Warn("encode latest entry", zap.Error(err))
	}
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	gen := reporting.NewGenerator(s.stores.Journal, s.stores.Aggregates, s.windowDays)
	report, err := gen.Generate(r.Context())
	if err != nil {
		s.fail(w, "build dashboard", err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(reporting.RenderDashboard(report)))
}

func (s *server) handlePrice(w http.ResponseWriter, _ *http.Request) {
	if s.sub == nil {
		http.Error(w, "ticker stream disabled", http.StatusServiceUnavailable)
		return
	}
	tick := s.sub.Latest()
	if tick == nil {
		http.Error(w, "no tick received yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tick)
}

func (s *server) fail(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, msg, http.StatusNotFound)
		return
	}
	s.log.Error(msg, zap.Error(err))
	http.Error(w, msg, http.StatusInternalServerError)
}
