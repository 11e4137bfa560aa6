// Package scoring replays a finished journal day against its candle window
// and writes the outcome back to the journal. Scoring is idempotent: a day
// that already carries an outcome is skipped unless the run is forced.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/marketdata"
	"btc-journal-lab/internal/sim"
	"btc-journal-lab/internal/storage"
)

// Dispositions reported per scored date.
const (
	DispositionScored        = "scored"
	DispositionAlreadyScored = "already_scored"
	DispositionNoEntry       = "no_entry"
)

// Status is the result of one scoring attempt.
type Status struct {
	Date        string
	Disposition string
	Result      string
	RealizedR   float64
}

// CandleSource fetches the raw candle window for a time range.
// *marketdata.Client satisfies it.
type CandleSource interface {
	Candles(ctx context.Context, startMs, endMs int64) ([]domain.Candle, error)
}

// Runner scores journal days.
type Runner struct {
	journal storage.JournalStore
	cache   storage.CandleStore // optional, nil disables caching
	source  CandleSource

	instID string
	bar    string
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithCandleCache stores every fetched window so re-scores and verification
// replay the exact series the original score saw.
func WithCandleCache(cache storage.CandleStore) Option {
	return func(r *Runner) { r.cache = cache }
}

// WithSeries sets the instrument and bar recorded with cached candles.
func WithSeries(instID, bar string) Option {
	return func(r *Runner) {
		r.instID = instID
		r.bar = bar
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithClock overrides the scored-at timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a scoring runner.
func NewRunner(journal storage.JournalStore, source CandleSource, opts ...Option) *Runner {
	r := &Runner{
		journal: journal,
		source:  source,
		instID:  marketdata.DefaultInstID,
		bar:     marketdata.DefaultBar,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Score scores one ET date. Already-scored days and days without an entry
// come back as non-error statuses; data problems (short candle window,
// malformed plan) are errors so schedulers can retry.
func (r *Runner) Score(ctx context.Context, date string, force bool) (*Status, error) {
	entry, err := r.journal.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			r.log.Info("no journal entry for date", zap.String("date", date))
			return &Status{Date: date, Disposition: DispositionNoEntry}, nil
		}
		return nil, fmt.Errorf("load journal entry %s: %w", date, err)
	}

	if entry.Scored() && !force {
		r.log.Info("entry already scored",
			zap.String("date", date),
			zap.String("result", entry.Result))
		return &Status{
			Date:        date,
			Disposition: DispositionAlreadyScored,
			Result:      entry.Result,
			RealizedR:   entry.RealizedR,
		}, nil
	}

	candles, err := r.windowCandles(ctx, date)
	if err != nil {
		return nil, err
	}

	rec, err := sim.Simulate(entry.Plan, candles)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", date, err)
	}

	result := FormatResult(rec)
	upd := &storage.OutcomeUpdate{
		Outcome:    rec,
		Result:     result,
		RealizedR:  rec.RealizedR,
		ScoredAtMs: r.now().UnixMilli(),
		Force:      force,
	}
	if err := r.journal.AttachOutcome(ctx, date, upd); err != nil {
		return nil, fmt.Errorf("attach outcome %s: %w", date, err)
	}

	r.log.Info("scored journal entry",
		zap.String("date", date),
		zap.String("result", result),
		zap.Float64("realized_r", rec.RealizedR),
		zap.Bool("forced", force))

	return &Status{
		Date:        date,
		Disposition: DispositionScored,
		Result:      result,
		RealizedR:   rec.RealizedR,
	}, nil
}

// windowCandles returns the scoring window for a date, preferring the cache
// and falling back to the exchange. Fetched windows are written back to the
// cache so later re-scores replay the same series.
func (r *Runner) windowCandles(ctx context.Context, date string) ([]domain.Candle, error) {
	startMs, endMs, err := marketdata.DayWindow(date)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		cached, err := r.cache.GetRange(ctx, r.instID, r.bar, startMs, endMs)
		if err != nil {
			return nil, fmt.Errorf("read candle cache: %w", err)
		}
		if len(cached) >= sim.MinBars {
			return cached, nil
		}
	}

	fetched, err := r.source.Candles(ctx, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("fetch candles for %s: %w", date, err)
	}
	if r.cache != nil && len(fetched) > 0 {
		if err := r.cache.InsertBatch(ctx, r.instID, r.bar, fetched); err != nil {
			r.log.Warn("cache candle window failed", zap.String("date", date), zap.Error(err))
		}
	}
	return fetched, nil
}

// FormatResult renders the journal result string for an outcome, for
// example "long:take_profit_1" or "no_trigger".
func FormatResult(rec *domain.OutcomeRecord) string {
	switch rec.TriggeredSide {
	case domain.TriggeredLong, domain.TriggeredShort:
		return rec.TriggeredSide + ":" + rec.ExitReason
	case domain.TriggeredConflict:
		return domain.TriggeredConflict
	default:
		return rec.ExitReason
	}
}
