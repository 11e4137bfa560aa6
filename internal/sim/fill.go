package sim

import "btc-journal-lab/internal/domain"

// DetectFill scans bars strictly after the trigger bar for the first bar
// whose intrabar range reaches the entry price. The trigger close arms the
// order; price must still trade back to the entry level afterwards, so the
// trigger bar itself never fills. Returns -1, false if the window ends first.
func DetectFill(candles []domain.Candle, side domain.Side, entry float64, triggerIdx int) (int, bool) {
	for i := triggerIdx + 1; i < len(candles); i++ {
		c := candles[i]
		switch side {
		case domain.SideLong:
			if c.High >= entry {
				return i, true
			}
		case domain.SideShort:
			if c.Low <= entry {
				return i, true
			}
		}
	}
	return -1, false
}
