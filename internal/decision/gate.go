// Package decision evaluates the funding-rate gate that sizes (or blocks)
// the day's paper trade before any trigger is armed.
package decision

import (
	"fmt"

	"btc-journal-lab/internal/domain"
)

// Stance is the sizing verdict for the day.
type Stance string

const (
	StanceFullSize Stance = "FULL_SIZE"
	StanceHalfSize Stance = "HALF_SIZE"
	StanceNoTrade  Stance = "NO_TRADE"
)

// CriterionResult represents pass/fail for one gate criterion.
type CriterionResult struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// Result contains the stance with the evaluated checklist.
type Result struct {
	Stance   Stance
	Checks   []CriterionResult
	Funding  float64
	Premium  float64
	HasQuote bool // false when no funding snapshot was captured
}

// Evaluate applies the risk-rule funding thresholds to a funding snapshot.
// A missing snapshot defaults to full size: the gate only restricts when it
// has evidence of a crowded carry.
func Evaluate(rules domain.RiskRules, funding *domain.FundingSnapshot) Result {
	if funding == nil {
		return Result{
			Stance: StanceFullSize,
			Checks: []CriterionResult{{
				Name:      "funding snapshot present",
				Threshold: "required for restriction",
				Actual:    "absent",
				Pass:      true,
			}},
		}
	}

	rate := funding.FundingRate
	abs := rate
	if abs < 0 {
		abs = -abs
	}

	noTrade := CriterionResult{
		Name:      "abs funding below no-trade threshold",
		Threshold: fmt.Sprintf("< %.4f%%", rules.FundingNoTradeThreshold*100),
		Actual:    fmt.Sprintf("%.4f%%", abs*100),
		Pass:      abs < rules.FundingNoTradeThreshold,
	}
	halfSize := CriterionResult{
		Name:      "abs funding below half-size threshold",
		Threshold: fmt.Sprintf("< %.4f%%", rules.FundingHalfSizeThreshold*100),
		Actual:    fmt.Sprintf("%.4f%%", abs*100),
		Pass:      abs < rules.FundingHalfSizeThreshold,
	}

	stance := StanceFullSize
	switch {
	case !noTrade.Pass:
		stance = StanceNoTrade
	case !halfSize.Pass:
		stance = StanceHalfSize
	}

	return Result{
		Stance:   stance,
		Checks:   []CriterionResult{noTrade, halfSize},
		Funding:  rate,
		Premium:  funding.Premium,
		HasQuote: true,
	}
}
