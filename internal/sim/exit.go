package sim

import (
	"fmt"
	"sort"

	"btc-journal-lab/internal/domain"
)

// Exit is the terminal result of walking bars after a fill.
type Exit struct {
	Reason string
	Price  float64
	TimeMs int64

	MaxFavorableR float64
	MaxAdverseR   float64
	RealizedR     float64
}

// targetsByDistance returns the side's take-profit levels ordered nearest to
// entry first. The conservative first-touch rule always pays the nearest
// target reached in a bar, never the best of all touched.
func targetsByDistance(plan domain.SidePlan) []float64 {
	tps := make([]float64, len(plan.TakeProfits))
	copy(tps, plan.TakeProfits)
	sort.Slice(tps, func(i, j int) bool {
		di := tps[i] - plan.Entry
		dj := tps[j] - plan.Entry
		if di < 0 {
			di = -di
		}
		if dj < 0 {
			dj = -dj
		}
		return di < dj
	})
	return tps
}

// SimulateExit walks candles forward from the fill bar and resolves the
// position against stop and take-profit levels.
//
// Per bar, in order:
//   - update favorable/adverse excursion from the bar's high/low
//   - check stop touch and nearest-target touch
//   - a bar touching both stop and target exits at the stop
//     (ambiguous_same_bar): intrabar ordering is unknowable from OHLC, so
//     the pessimistic outcome wins
//
// If the window is exhausted with the position still open, it is closed at
// the last available close price.
func SimulateExit(candles []domain.Candle, plan domain.SidePlan, fillIdx int) (Exit, error) {
	risk := plan.Risk()
	if risk == 0 {
		return Exit{}, fmt.Errorf("%s side: %w", plan.Side, ErrZeroRisk)
	}

	targets := targetsByDistance(plan)

	var ex Exit
	for i := fillIdx; i < len(candles); i++ {
		c := candles[i]

		var favorable, adverse float64
		if plan.Side == domain.SideLong {
			favorable = (c.High - plan.Entry) / risk
			adverse = (plan.Entry - c.Low) / risk
		} else {
			favorable = (plan.Entry - c.Low) / risk
			adverse = (c.High - plan.Entry) / risk
		}
		if favorable > ex.MaxFavorableR {
			ex.MaxFavorableR = favorable
		}
		if adverse > ex.MaxAdverseR {
			ex.MaxAdverseR = adverse
		}

		stopTouched := stopHit(c, plan)
		tpIdx := firstTargetHit(c, plan, targets)

		switch {
		case stopTouched && tpIdx >= 0:
			ex.Reason = domain.ExitReasonAmbiguous
			ex.Price = plan.Stop
		case stopTouched:
			ex.Reason = domain.ExitReasonStopped
			ex.Price = plan.Stop
		case tpIdx >= 0:
			ex.Reason = domain.ExitReasonTakeProfit(tpIdx + 1)
			ex.Price = targets[tpIdx]
		default:
			continue
		}

		ex.TimeMs = c.OpenTimeMs
		ex.RealizedR = realizedR(plan, ex.Price, risk)
		return ex, nil
	}

	// Window exhausted with the position still open.
	last := candles[len(candles)-1]
	ex.Reason = domain.ExitReasonExpired
	ex.Price = last.Close
	ex.TimeMs = last.OpenTimeMs
	ex.RealizedR = realizedR(plan, ex.Price, risk)
	return ex, nil
}

func stopHit(c domain.Candle, plan domain.SidePlan) bool {
	if plan.Side == domain.SideLong {
		return c.Low <= plan.Stop
	}
	return c.High >= plan.Stop
}

// firstTargetHit returns the index of the nearest target the bar reaches,
// or -1. Targets are pre-sorted by distance, so the scan stops at the first
// touch even when the bar's range spans several levels.
func firstTargetHit(c domain.Candle, plan domain.SidePlan, targets []float64) int {
	for i, tp := range targets {
		if plan.Side == domain.SideLong {
			if c.High >= tp {
				return i
			}
		} else {
			if c.Low <= tp {
				return i
			}
		}
	}
	return -1
}

func realizedR(plan domain.SidePlan, exitPrice, risk float64) float64 {
	if plan.Side == domain.SideLong {
		return (exitPrice - plan.Entry) / risk
	}
	return (plan.Entry - exitPrice) / risk
}
