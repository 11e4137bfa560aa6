package domain

// Candle is one OHLC bar at a fixed interval.
// Series invariant: OpenTimeMs strictly increasing, Low <= Open,Close <= High.
type Candle struct {
	OpenTimeMs int64 // bar open time, Unix ms, UTC
	Open       float64
	High       float64
	Low        float64
	Close      float64
}

// Touches reports whether price falls inside the bar's intrabar range.
func (c Candle) Touches(price float64) bool {
	return c.Low <= price && price <= c.High
}
