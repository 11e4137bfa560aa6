// Package verification replays stored journal outcomes from cached candles
// and reports any divergence from the persisted record. A clean run proves
// the scoring pipeline is deterministic over the stored data.
package verification

import (
	"context"
	"math"

	"btc-journal-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string
	Expected interface{} // stored value
	Actual   interface{} // replayed value
}

// DayResult contains the result of verifying a single journal day.
type DayResult struct {
	Date        string
	Match       bool
	Divergences []FieldDivergence
	StoredR     float64
	ReplayedR   float64
}

// Report contains results for batch verification.
type Report struct {
	TotalDays     int
	MatchedDays   int
	DivergentDays int
	SkippedDays   int // unscored entries, nothing to verify
	Results       []DayResult
}

// Verifier re-scores stored journal days and compares outcomes.
type Verifier interface {
	VerifyDay(ctx context.Context, date string) (*DayResult, error)
	VerifyAll(ctx context.Context) (*Report, error)
}

// CompareOutcomes compares a stored outcome record with a replayed one and
// returns the divergent fields. Floats are compared with FloatTolerance.
func CompareOutcomes(stored, replayed *domain.OutcomeRecord) []FieldDivergence {
	var divergences []FieldDivergence

	addString := func(field, expected, actual string) {
		if expected != actual {
			divergences = append(divergences, FieldDivergence{Field: field, Expected: expected, Actual: actual})
		}
	}
	addInt64 := func(field string, expected, actual int64) {
		if expected != actual {
			divergences = append(divergences, FieldDivergence{Field: field, Expected: expected, Actual: actual})
		}
	}
	addFloat := func(field string, expected, actual float64) {
		if math.Abs(expected-actual) > FloatTolerance {
			divergences = append(divergences, FieldDivergence{Field: field, Expected: expected, Actual: actual})
		}
	}

	addString("TriggeredSide", stored.TriggeredSide, replayed.TriggeredSide)
	addInt64("TriggerTimeMs", stored.TriggerTimeMs, replayed.TriggerTimeMs)
	if stored.Filled != replayed.Filled {
		divergences = append(divergences, FieldDivergence{Field: "Filled", Expected: stored.Filled, Actual: replayed.Filled})
	}
	addInt64("FillTimeMs", stored.FillTimeMs, replayed.FillTimeMs)
	addString("ExitReason", stored.ExitReason, replayed.ExitReason)
	addFloat("ExitPrice", stored.ExitPrice, replayed.ExitPrice)
	addInt64("ExitTimeMs", stored.ExitTimeMs, replayed.ExitTimeMs)
	addFloat("MaxFavorableR", stored.MaxFavorableR, replayed.MaxFavorableR)
	addFloat("MaxAdverseR", stored.MaxAdverseR, replayed.MaxAdverseR)
	addFloat("RealizedR", stored.RealizedR, replayed.RealizedR)

	return divergences
}
