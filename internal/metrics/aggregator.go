package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/marketdata"
	"btc-journal-lab/internal/storage"
)

// ErrNoScoredDays is returned when the window contains no scored entries.
var ErrNoScoredDays = errors.New("no scored days in window")

// Aggregator computes trailing-window snapshots from the journal.
type Aggregator struct {
	journal    storage.JournalStore
	aggregates storage.AggregateStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(journal storage.JournalStore, aggregates storage.AggregateStore) *Aggregator {
	return &Aggregator{
		journal:    journal,
		aggregates: aggregates,
	}
}

// ComputeWindow computes the snapshot for the trailing windowDays ending at
// now. Returns ErrNoScoredDays when nothing in the window has been scored.
func (a *Aggregator) ComputeWindow(ctx context.Context, windowDays int, now time.Time) (*domain.DailyAggregate, error) {
	endDate := marketdata.TodayET(now)
	startDate := now.In(marketdata.ET()).AddDate(0, 0, -(windowDays - 1)).Format(marketdata.DateLayout)

	entries, err := a.journal.ListRange(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("list window %s..%s: %w", startDate, endDate, err)
	}

	agg := Compute(entries, windowDays, now.UnixMilli())
	if agg.TradeDays+agg.NoTradeDays == 0 {
		return nil, ErrNoScoredDays
	}
	return agg, nil
}

// ComputeAndStore computes the snapshot and persists it.
func (a *Aggregator) ComputeAndStore(ctx context.Context, windowDays int, now time.Time) (*domain.DailyAggregate, error) {
	agg, err := a.ComputeWindow(ctx, windowDays, now)
	if err != nil {
		return nil, err
	}
	if err := a.aggregates.Insert(ctx, agg); err != nil {
		return nil, fmt.Errorf("store aggregate: %w", err)
	}
	return agg, nil
}
