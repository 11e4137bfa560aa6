package sim

import "errors"

// Simulation errors. All are data-quality conditions the caller can recover
// from by skipping the day, re-fetching candles, or flagging for review.
var (
	// ErrMalformedTrigger is returned when a side's trigger condition cannot
	// be resolved into an operator and a level.
	ErrMalformedTrigger = errors.New("trigger text does not contain an operator and level")

	// ErrInsufficientData is returned when the window holds fewer bars than
	// needed for a meaningful determination.
	ErrInsufficientData = errors.New("not enough candles to score the window")

	// ErrZeroRisk is returned when entry equals stop. Never coerced.
	ErrZeroRisk = errors.New("entry equals stop: initial risk is zero")

	// ErrInvalidPlan is returned when a side's stop sits on the wrong side of
	// the entry (long stop above entry, short stop below).
	ErrInvalidPlan = errors.New("stop is on the wrong side of entry")
)
