package domain

import (
	"fmt"
	"strings"
)

// Triggered side values for OutcomeRecord.TriggeredSide.
const (
	TriggeredNone     = "none"
	TriggeredLong     = "long"
	TriggeredShort    = "short"
	TriggeredConflict = "conflict" // both sides triggered on the same bar time
)

// Exit reason codes. TakeProfit exits are numbered by distance order,
// nearest target first: take_profit_1, take_profit_2, ...
const (
	ExitReasonStopped       = "stopped"
	ExitReasonAmbiguous     = "ambiguous_same_bar"
	ExitReasonExpired       = "expired_at_window_close"
	ExitReasonArmedNoFill   = "armed_not_filled"
	ExitReasonNoTrigger     = "no_trigger" // also used for conflict: no position was opened
	exitReasonTakeProfitFmt = "take_profit_%d"
)

// ExitReasonTakeProfit returns the exit reason code for the k-th target,
// counted 1-based in distance order from entry.
func ExitReasonTakeProfit(k int) string {
	return fmt.Sprintf(exitReasonTakeProfitFmt, k)
}

// IsTakeProfitExit reports whether reason is any take_profit_k code.
func IsTakeProfitExit(reason string) bool {
	return strings.HasPrefix(reason, "take_profit_")
}

// OutcomeRecord is the result of replaying one TradePlan against one candle
// window. Created once per simulation run and never mutated afterwards;
// downstream stores key it by journal date.
type OutcomeRecord struct {
	TriggeredSide string
	TriggerTimeMs int64 // 0 when TriggeredSide is none or conflict

	Filled     bool
	FillTimeMs int64

	ExitReason string
	ExitPrice  float64
	ExitTimeMs int64

	// Excursion extremes reached at any point after the fill, in R units.
	// Both are tracked even when the position is later stopped out.
	MaxFavorableR float64
	MaxAdverseR   float64

	RealizedR float64
}

// Traded reports whether the record represents an opened position.
func (o OutcomeRecord) Traded() bool {
	return o.Filled
}
