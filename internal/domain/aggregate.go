package domain

// DailyAggregate is the rolled-up view over a trailing window of scored days.
// Breakdowns are keyed by exit reason / triggered side code.
type DailyAggregate struct {
	WindowDays int
	AsOfMs     int64

	TotalR     float64
	AvgRPerDay float64

	TradeDays   int // days where the plan actually filled
	NoTradeDays int // days that never triggered

	WinTrades     int
	LossTrades    int
	WinRatePct    float64 // wins / (wins+losses), flat days ignored
	ExpectancyR   float64 // mean R per filled trade
	MaxDrawdownR  float64 // worst peak-to-trough on the equity curve
	MaxConsecLoss int

	ExitBreakdown map[string]int64
	SideBreakdown map[string]int64

	// EquityCurve is cumulative R by day, oldest first.
	EquityCurve []float64
}
