// Package app wires configuration into concrete store implementations so the
// command binaries share one backend-selection path.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"btc-journal-lab/internal/config"
	"btc-journal-lab/internal/storage"
	chstore "btc-journal-lab/internal/storage/clickhouse"
	"btc-journal-lab/internal/storage/memory"
	"btc-journal-lab/internal/storage/migrations"
	pgstore "btc-journal-lab/internal/storage/postgres"
)

// Stores bundles the three persistence interfaces behind one Close.
type Stores struct {
	Journal    storage.JournalStore
	Candles    storage.CandleStore
	Aggregates storage.AggregateStore

	closers []func()
}

// Close releases every underlying connection.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStores connects the configured backends and applies migrations.
//
// Backend "memory" keeps everything in process. Backend "postgres" puts the
// journal in Postgres; the candle cache and aggregates additionally go to
// ClickHouse when its DSN is set. Backend "clickhouse" is the inverse: the
// timeseries go to ClickHouse and the journal joins Postgres when its DSN is
// set. Missing optional stores fall back to memory.
func OpenStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	s := &Stores{
		Journal:    memory.NewJournalStore(),
		Candles:    memory.NewCandleStore(),
		Aggregates: memory.NewAggregateStore(),
	}
	if cfg.Storage.Backend == "memory" {
		return s, nil
	}

	usePostgres := cfg.Storage.Backend == "postgres" || cfg.Storage.PostgresDSN != ""
	useClickhouse := cfg.Storage.Backend == "clickhouse" || cfg.Storage.ClickHouseDSN != ""

	if usePostgres {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		s.Journal = pgstore.NewJournalStore(pool)
		log.Info("journal store ready", zap.String("backend", "postgres"))
	}

	if useClickhouse {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickHouseDSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		s.closers = append(s.closers, func() { _ = conn.Close() })
		s.Candles = chstore.NewCandleStore(conn)
		s.Aggregates = chstore.NewAggregateStore(conn)
		log.Info("timeseries stores ready", zap.String("backend", "clickhouse"))
	}

	return s, nil
}
