// Package sim reconstructs what would have happened to a daily conditional
// paper trade from OHLC candles alone. Simulation is a pure function of
// (TradePlan, Candles): no I/O, no shared state, deterministic output.
package sim

import (
	"fmt"

	"btc-journal-lab/internal/domain"
)

// MinBars is the minimum window size for a meaningful determination. Shorter
// windows usually mean the provider's fetch was truncated; the caller should
// re-fetch and retry rather than score a partial day.
const MinBars = 10

// State is the lifecycle position of a single side's simulation.
type State int

const (
	StateUntriggered State = iota // no activating close yet
	StateArmed                    // trigger close seen, waiting for entry touch
	StateFilled                   // entry traded, walking stop/target logic
	StateClosed                   // terminal
)

// Simulate replays a trade plan against a time-ordered candle window and
// produces the outcome record. The candle slice is owned by the caller and
// never retained or mutated.
//
// Data-quality conditions (short window, zero risk, unparsable trigger,
// misplaced stop) surface as errors; a conflict between the two sides is a
// valid outcome, reported via TriggeredSide, not an error.
func Simulate(plan domain.TradePlan, candles []domain.Candle) (*domain.OutcomeRecord, error) {
	if len(candles) < MinBars {
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientData, len(candles), MinBars)
	}
	if err := validateSide(plan.Long); err != nil {
		return nil, err
	}
	if err := validateSide(plan.Short); err != nil {
		return nil, err
	}

	rec := &domain.OutcomeRecord{
		TriggeredSide: domain.TriggeredNone,
		ExitReason:    domain.ExitReasonNoTrigger,
	}

	var (
		side    domain.SidePlan
		trigIdx int
		fillIdx int
	)

	// Explicit UNTRIGGERED -> ARMED -> FILLED -> CLOSED walk; each arm either
	// advances the state or closes the record terminally.
	for state := StateUntriggered; state != StateClosed; {
		switch state {
		case StateUntriggered:
			trig := DetectTrigger(candles, plan.Long, plan.Short)
			rec.TriggeredSide = trig.Side
			if trig.Side == domain.TriggeredNone || trig.Side == domain.TriggeredConflict {
				// No position was ever opened; for a conflict the caller
				// flags the day for review instead of picking a side.
				state = StateClosed
				continue
			}
			rec.TriggerTimeMs = trig.TimeMs
			side = sidePlanFor(plan, trig.Side)
			trigIdx = trig.Index
			state = StateArmed

		case StateArmed:
			idx, filled := DetectFill(candles, side.Side, side.Entry, trigIdx)
			if !filled {
				rec.ExitReason = domain.ExitReasonArmedNoFill
				state = StateClosed
				continue
			}
			fillIdx = idx
			rec.Filled = true
			rec.FillTimeMs = candles[fillIdx].OpenTimeMs
			state = StateFilled

		case StateFilled:
			exit, err := SimulateExit(candles, side, fillIdx)
			if err != nil {
				return nil, err
			}
			rec.ExitReason = exit.Reason
			rec.ExitPrice = exit.Price
			rec.ExitTimeMs = exit.TimeMs
			rec.MaxFavorableR = exit.MaxFavorableR
			rec.MaxAdverseR = exit.MaxAdverseR
			rec.RealizedR = exit.RealizedR
			state = StateClosed
		}
	}

	return rec, nil
}

// validateSide fails fast on plans the simulator cannot score honestly.
func validateSide(p domain.SidePlan) error {
	if p.TriggerOp != domain.TriggerGE && p.TriggerOp != domain.TriggerLE {
		return fmt.Errorf("%s side: %w", p.Side, ErrMalformedTrigger)
	}
	if p.Entry == p.Stop {
		return fmt.Errorf("%s side: %w", p.Side, ErrZeroRisk)
	}
	if p.Side == domain.SideLong && p.Stop > p.Entry {
		return fmt.Errorf("long side: %w", ErrInvalidPlan)
	}
	if p.Side == domain.SideShort && p.Stop < p.Entry {
		return fmt.Errorf("short side: %w", ErrInvalidPlan)
	}
	return nil
}

func sidePlanFor(plan domain.TradePlan, triggered string) domain.SidePlan {
	if triggered == domain.TriggeredLong {
		return plan.Long
	}
	return plan.Short
}
