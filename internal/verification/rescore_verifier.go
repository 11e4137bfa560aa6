package verification

import (
	"context"
	"errors"
	"fmt"

	"btc-journal-lab/internal/marketdata"
	"btc-journal-lab/internal/sim"
	"btc-journal-lab/internal/storage"
)

var (
	// ErrDayNotFound is returned when the date has no journal entry.
	ErrDayNotFound = errors.New("journal day not found")

	// ErrDayNotScored is returned when the entry has no outcome to verify.
	ErrDayNotScored = errors.New("journal day not scored")
)

// RescoreVerifier implements Verifier by replaying the stored plan against
// the cached candle window.
type RescoreVerifier struct {
	journal storage.JournalStore
	candles storage.CandleStore
	instID  string
	bar     string
}

// NewRescoreVerifier creates a verifier over the journal and candle cache.
func NewRescoreVerifier(journal storage.JournalStore, candles storage.CandleStore, instID, bar string) *RescoreVerifier {
	return &RescoreVerifier{
		journal: journal,
		candles: candles,
		instID:  instID,
		bar:     bar,
	}
}

// VerifyDay replays one scored day and compares the outcome field by field.
func (v *RescoreVerifier) VerifyDay(ctx context.Context, date string) (*DayResult, error) {
	entry, err := v.journal.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}
	if !entry.Scored() {
		return nil, ErrDayNotScored
	}

	startMs, endMs, err := marketdata.DayWindow(date)
	if err != nil {
		return nil, err
	}
	candles, err := v.candles.GetRange(ctx, v.instID, v.bar, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("load cached candles for %s: %w", date, err)
	}

	replayed, err := sim.Simulate(entry.Plan, candles)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", date, err)
	}

	divergences := CompareOutcomes(entry.Outcome, replayed)
	return &DayResult{
		Date:        date,
		Match:       len(divergences) == 0,
		Divergences: divergences,
		StoredR:     entry.Outcome.RealizedR,
		ReplayedR:   replayed.RealizedR,
	}, nil
}

// VerifyAll replays every scored day. Replay failures are recorded as
// divergences, not returned as errors, so one bad day cannot hide the rest.
func (v *RescoreVerifier) VerifyAll(ctx context.Context) (*Report, error) {
	entries, err := v.journal.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TotalDays: len(entries),
		Results:   make([]DayResult, 0, len(entries)),
	}
	for _, entry := range entries {
		if !entry.Scored() {
			report.SkippedDays++
			continue
		}
		result, err := v.VerifyDay(ctx, entry.Date)
		if err != nil {
			report.Results = append(report.Results, DayResult{
				Date:  entry.Date,
				Match: false,
				Divergences: []FieldDivergence{
					{Field: "Error", Expected: nil, Actual: err.Error()},
				},
				StoredR: entry.RealizedR,
			})
			report.DivergentDays++
			continue
		}
		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedDays++
		} else {
			report.DivergentDays++
		}
	}

	return report, nil
}

// Compile-time interface check.
var _ Verifier = (*RescoreVerifier)(nil)
