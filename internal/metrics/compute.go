// Package metrics rolls scored journal days into trailing-window
// performance snapshots.
package metrics

import (
	"sort"

	"btc-journal-lab/internal/domain"
)

// Compute calculates a snapshot from scored entries. Entries are sorted by
// date ASC before computing order-dependent metrics (equity curve, drawdown,
// loss streaks). Unscored entries are ignored.
func Compute(entries []*domain.JournalEntry, windowDays int, asOfMs int64) *domain.DailyAggregate {
	scored := make([]*domain.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.Scored() {
			scored = append(scored, e)
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Date < scored[j].Date
	})

	agg := &domain.DailyAggregate{
		WindowDays:    windowDays,
		AsOfMs:        asOfMs,
		ExitBreakdown: make(map[string]int64),
		SideBreakdown: make(map[string]int64),
	}
	if len(scored) == 0 {
		return agg
	}

	var tradeRSum float64
	lossStreak := 0

	for _, e := range scored {
		agg.TotalR += e.RealizedR
		agg.EquityCurve = append(agg.EquityCurve, agg.TotalR)

		agg.ExitBreakdown[e.Outcome.ExitReason]++
		agg.SideBreakdown[e.Outcome.TriggeredSide]++

		if !e.Outcome.Traded() {
			agg.NoTradeDays++
			continue
		}
		agg.TradeDays++
		tradeRSum += e.RealizedR

		switch {
		case e.RealizedR > 0:
			agg.WinTrades++
			lossStreak = 0
		case e.RealizedR < 0:
			agg.LossTrades++
			lossStreak++
			if lossStreak > agg.MaxConsecLoss {
				agg.MaxConsecLoss = lossStreak
			}
		default:
			// flat trades break a loss streak but count in neither column
			lossStreak = 0
		}
	}

	agg.AvgRPerDay = agg.TotalR / float64(len(scored))
	if decided := agg.WinTrades + agg.LossTrades; decided > 0 {
		agg.WinRatePct = 100 * float64(agg.WinTrades) / float64(decided)
	}
	if agg.TradeDays > 0 {
		agg.ExpectancyR = tradeRSum / float64(agg.TradeDays)
	}
	agg.MaxDrawdownR = maxDrawdown(agg.EquityCurve)

	return agg
}

// maxDrawdown returns the worst peak-to-trough drop on a cumulative curve,
// as a positive magnitude.
func maxDrawdown(curve []float64) float64 {
	peak := 0.0
	worst := 0.0
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if dd := peak - v; dd > worst {
			worst = dd
		}
	}
	return worst
}
