package domain

// Side identifies the direction of a conditional order.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// TriggerOp is the comparison applied to a bar close against the trigger level.
type TriggerOp string

const (
	TriggerGE TriggerOp = ">="
	TriggerLE TriggerOp = "<="
)

// SidePlan is one side of the daily OCO conditional paper trade.
// Invariant: long stop < entry, short stop > entry. TakeProfits are ordered
// nearest-to-entry first; the exit simulator relies on that order for the
// conservative first-touch rule.
type SidePlan struct {
	Side         Side
	TriggerText  string // e.g. "15m close >= 87362.71", as written to the journal
	TriggerOp    TriggerOp
	TriggerLevel float64
	Entry        float64
	Stop         float64
	TakeProfits  []float64
}

// Risk returns the initial risk per unit, |entry - stop|.
func (p SidePlan) Risk() float64 {
	if p.Entry >= p.Stop {
		return p.Entry - p.Stop
	}
	return p.Stop - p.Entry
}

// TradePlan is the long/short conditional pair evaluated against one candle
// window. The two sides are independent until reconciled by trigger time.
type TradePlan struct {
	PlanID string // e.g. "BTC-2025-03-14-0600-ET-TEST"
	Long   SidePlan
	Short  SidePlan
}

// RiskRules carries the sizing policy attached to each playbook. The funding
// thresholds feed the decision gate; the R limits are informational.
type RiskRules struct {
	MaxRiskPerIdeaR          float64 `yaml:"max_risk_per_idea_r"`
	DailyStopR               float64 `yaml:"daily_stop_r"`
	FundingHalfSizeThreshold float64 `yaml:"funding_half_size_threshold"`
	FundingNoTradeThreshold  float64 `yaml:"funding_no_trade_threshold"`
}
