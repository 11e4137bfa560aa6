// Package backfill scores a contiguous range of journal dates in one pass.
package backfill

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"btc-journal-lab/internal/marketdata"
	"btc-journal-lab/internal/scoring"
)

// PlanFunc creates a journal entry for a date that has none yet. Backfill
// calls it before scoring when set, so historical ranges can be replanned
// and rescored in one pass.
type PlanFunc func(ctx context.Context, date string) error

// DayError records a date whose scoring attempt failed.
type DayError struct {
	Date string
	Err  error
}

// Summary aggregates the per-day results of one backfill run.
type Summary struct {
	StartDate string
	EndDate   string

	Scored        int
	AlreadyScored int
	NoEntry       int
	Failed        int

	Statuses []*scoring.Status
	Failures []DayError
}

// Days is the number of dates the run attempted.
func (s *Summary) Days() int {
	return s.Scored + s.AlreadyScored + s.NoEntry + s.Failed
}

// Backfiller walks a date range through the scoring runner.
type Backfiller struct {
	runner *scoring.Runner
	plan   PlanFunc
	log    *zap.Logger
}

// Option configures a Backfiller.
type Option func(*Backfiller)

// WithPlanFunc installs a plan generator for dates without a journal entry.
func WithPlanFunc(plan PlanFunc) Option {
	return func(b *Backfiller) { b.plan = plan }
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Backfiller) { b.log = log }
}

// New creates a Backfiller around a scoring runner.
func New(runner *scoring.Runner, opts ...Option) *Backfiller {
	b := &Backfiller{
		runner: runner,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run scores every date from startDate through endDate inclusive. A failed
// day is recorded and the run continues; only context cancellation and an
// invalid range abort the loop.
func (b *Backfiller) Run(ctx context.Context, startDate, endDate string, force bool) (*Summary, error) {
	start, err := time.ParseInLocation(marketdata.DateLayout, startDate, marketdata.ET())
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation(marketdata.DateLayout, endDate, marketdata.ET())
	if err != nil {
		return nil, fmt.Errorf("parse end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s before start date %s", endDate, startDate)
	}

	summary := &Summary{StartDate: startDate, EndDate: endDate}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		date := day.Format(marketdata.DateLayout)
		b.scoreDay(ctx, date, force, summary)
	}

	b.log.Info("backfill finished",
		zap.String("start", startDate),
		zap.String("end", endDate),
		zap.Int("scored", summary.Scored),
		zap.Int("already_scored", summary.AlreadyScored),
		zap.Int("no_entry", summary.NoEntry),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

func (b *Backfiller) scoreDay(ctx context.Context, date string, force bool, summary *Summary) {
	status, err := b.runner.Score(ctx, date, force)
	if err == nil && status.Disposition == scoring.DispositionNoEntry && b.plan != nil {
		if planErr := b.plan(ctx, date); planErr != nil {
			err = fmt.Errorf("plan %s: %w", date, planErr)
		} else {
			status, err = b.runner.Score(ctx, date, force)
		}
	}
	if err != nil {
		summary.Failed++
		summary.Failures = append(summary.Failures, DayError{Date: date, Err: err})
		b.log.Warn("backfill day failed", zap.String("date", date), zap.Error(err))
		return
	}

	summary.Statuses = append(summary.Statuses, status)
	switch status.Disposition {
	case scoring.DispositionScored:
		summary.Scored++
	case scoring.DispositionAlreadyScored:
		summary.AlreadyScored++
	case scoring.DispositionNoEntry:
		summary.NoEntry++
	}
}
