// Package planner derives the daily OCO conditional paper trade from a spot
// price snapshot. All published price levels are rounded to cents; decimal
// arithmetic keeps the journal values free of float drift.
package planner

import (
	"fmt"

	"github.com/shopspring/decimal"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/idhash"
)

// Config holds the level-derivation parameters. Percentages are fractions
// (0.015 = 1.5%).
type Config struct {
	BandPct          float64 `yaml:"band_pct"`           // support/resistance distance from spot
	TriggerOffsetPct float64 `yaml:"trigger_offset_pct"` // close beyond this arms the side
	EntryOffsetPct   float64 `yaml:"entry_offset_pct"`   // stop-entry beyond the trigger
	StopPaddingPct   float64 `yaml:"stop_padding_pct"`   // stop placed past the opposite band
	TP1Pct           float64 `yaml:"tp1_pct"`            // first target distance from spot
	ShortTP2Pct      float64 `yaml:"short_tp2_pct"`      // second short target distance from spot

	Rules domain.RiskRules `yaml:"risk_rules"`
}

// DefaultConfig mirrors the historical playbook parameters.
func DefaultConfig() Config {
	return Config{
		BandPct:          0.015,
		TriggerOffsetPct: 0.002,
		EntryOffsetPct:   0.003,
		StopPaddingPct:   0.002,
		TP1Pct:           0.010,
		ShortTP2Pct:      0.015,
		Rules: domain.RiskRules{
			MaxRiskPerIdeaR:          1.0,
			DailyStopR:               2.0,
			FundingHalfSizeThreshold: 0.0003, // 0.03% per interval
			FundingNoTradeThreshold:  0.0010, // 0.10% per interval
		},
	}
}

// Build derives a complete journal entry for one ET date from a spot
// snapshot. date is the ET calendar date ("2006-01-02"); nowMs is the
// creation timestamp.
func Build(cfg Config, date string, nowMs int64, spotUSD float64, funding *domain.FundingSnapshot) (*domain.JournalEntry, error) {
	if spotUSD <= 0 {
		return nil, fmt.Errorf("build playbook for %s: spot price %f is not positive", date, spotUSD)
	}

	spot := decimal.NewFromFloat(spotUSD)
	support := mulRound(spot, 1-cfg.BandPct)
	resistance := mulRound(spot, 1+cfg.BandPct)

	longTriggerLevel := mulRound(spot, 1+cfg.TriggerOffsetPct)
	long := domain.SidePlan{
		Side:         domain.SideLong,
		TriggerText:  fmt.Sprintf("15m close >= %.2f", longTriggerLevel),
		TriggerOp:    domain.TriggerGE,
		TriggerLevel: longTriggerLevel,
		Entry:        mulRound(spot, 1+cfg.EntryOffsetPct),
		Stop:         mulRound(decimal.NewFromFloat(support), 1-cfg.StopPaddingPct),
		TakeProfits:  []float64{mulRound(spot, 1+cfg.TP1Pct), resistance},
	}

	shortTriggerLevel := mulRound(spot, 1-cfg.TriggerOffsetPct)
	short := domain.SidePlan{
		Side:         domain.SideShort,
		TriggerText:  fmt.Sprintf("15m close <= %.2f", shortTriggerLevel),
		TriggerOp:    domain.TriggerLE,
		TriggerLevel: shortTriggerLevel,
		Entry:        mulRound(spot, 1-cfg.EntryOffsetPct),
		Stop:         mulRound(decimal.NewFromFloat(resistance), 1+cfg.StopPaddingPct),
		TakeProfits:  []float64{mulRound(spot, 1-cfg.TP1Pct), mulRound(spot, 1-cfg.ShortTP2Pct)},
	}

	planID := fmt.Sprintf("BTC-%s-0600-ET-TEST", date)
	spotRounded := round2(spot)

	return &domain.JournalEntry{
		EntryID:     idhash.ComputeEntryID(date, planID, spotRounded),
		Date:        date,
		CreatedAtMs: nowMs,
		SpotUSD:     spotRounded,
		Funding:     funding,
		Levels: domain.Levels{
			Support:    []float64{support},
			Resistance: []float64{resistance},
		},
		Rules: cfg.Rules,
		Plan: domain.TradePlan{
			PlanID: planID,
			Long:   long,
			Short:  short,
		},
	}, nil
}

func mulRound(d decimal.Decimal, factor float64) float64 {
	return round2(d.Mul(decimal.NewFromFloat(factor)))
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
