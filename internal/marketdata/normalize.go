package marketdata

import (
	"errors"
	"fmt"
	"sort"

	"btc-journal-lab/internal/domain"
)

// ErrEmptySeries is returned when validation receives no candles.
var ErrEmptySeries = errors.New("empty candle series")

// Normalize deduplicates candles by open time (last write wins) and returns
// them in ascending time order. Exchange paging can deliver overlapping pages
// in newest-first order; the simulator requires a unique ascending series.
func Normalize(candles []domain.Candle) []domain.Candle {
	if len(candles) == 0 {
		return nil
	}

	byTime := make(map[int64]domain.Candle, len(candles))
	for _, c := range candles {
		byTime[c.OpenTimeMs] = c
	}

	out := make([]domain.Candle, 0, len(byTime))
	for _, c := range byTime {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OpenTimeMs < out[j].OpenTimeMs
	})
	return out
}

// Validate checks the series invariants: non-empty, strictly increasing open
// times, and High/Low covering Open and Close on every bar.
func Validate(candles []domain.Candle) error {
	if len(candles) == 0 {
		return ErrEmptySeries
	}
	for i, c := range candles {
		if i > 0 && c.OpenTimeMs <= candles[i-1].OpenTimeMs {
			return fmt.Errorf("candle %d: open time %d not after previous %d",
				i, c.OpenTimeMs, candles[i-1].OpenTimeMs)
		}
		if c.High < c.Low {
			return fmt.Errorf("candle %d: high %f below low %f", i, c.High, c.Low)
		}
		if c.Open > c.High || c.Open < c.Low {
			return fmt.Errorf("candle %d: open %f outside [%f, %f]", i, c.Open, c.Low, c.High)
		}
		if c.Close > c.High || c.Close < c.Low {
			return fmt.Errorf("candle %d: close %f outside [%f, %f]", i, c.Close, c.Low, c.High)
		}
	}
	return nil
}
