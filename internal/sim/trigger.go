package sim

import "btc-journal-lab/internal/domain"

// TriggerResult reports which side of the plan armed first.
type TriggerResult struct {
	Side   string // domain.TriggeredNone | TriggeredLong | TriggeredShort | TriggeredConflict
	Index  int    // trigger bar index, -1 when Side is none
	TimeMs int64  // trigger bar open time, 0 when Side is none
}

// firstClose returns the index of the first candle whose close satisfies
// op against level, or -1 if no close ever crosses.
func firstClose(candles []domain.Candle, op domain.TriggerOp, level float64) int {
	for i, c := range candles {
		switch op {
		case domain.TriggerGE:
			if c.Close >= level {
				return i
			}
		case domain.TriggerLE:
			if c.Close <= level {
				return i
			}
		}
	}
	return -1
}

// DetectTrigger scans the window for each side's first activating close and
// reconciles the two by time. The strictly earlier side wins; equal trigger
// times are a genuine ambiguity in the source signal and are reported as a
// conflict rather than resolved by guessing.
func DetectTrigger(candles []domain.Candle, long, short domain.SidePlan) TriggerResult {
	longIdx := firstClose(candles, long.TriggerOp, long.TriggerLevel)
	shortIdx := firstClose(candles, short.TriggerOp, short.TriggerLevel)

	switch {
	case longIdx < 0 && shortIdx < 0:
		return TriggerResult{Side: domain.TriggeredNone, Index: -1}
	case shortIdx < 0:
		return TriggerResult{Side: domain.TriggeredLong, Index: longIdx, TimeMs: candles[longIdx].OpenTimeMs}
	case longIdx < 0:
		return TriggerResult{Side: domain.TriggeredShort, Index: shortIdx, TimeMs: candles[shortIdx].OpenTimeMs}
	case longIdx < shortIdx:
		return TriggerResult{Side: domain.TriggeredLong, Index: longIdx, TimeMs: candles[longIdx].OpenTimeMs}
	case shortIdx < longIdx:
		return TriggerResult{Side: domain.TriggeredShort, Index: shortIdx, TimeMs: candles[shortIdx].OpenTimeMs}
	default:
		return TriggerResult{Side: domain.TriggeredConflict, Index: longIdx, TimeMs: candles[longIdx].OpenTimeMs}
	}
}
