package decision

import (
	"testing"

	"btc-journal-lab/internal/domain"
)

func rules() domain.RiskRules {
	return domain.RiskRules{
		FundingHalfSizeThreshold: 0.0003,
		FundingNoTradeThreshold:  0.0010,
	}
}

func TestEvaluate_FullSizeBelowThresholds(t *testing.T) {
	res := Evaluate(rules(), &domain.FundingSnapshot{FundingRate: 0.0001})
	if res.Stance != StanceFullSize {
		t.Errorf("expected FULL_SIZE, got %s", res.Stance)
	}
	if len(res.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(res.Checks))
	}
	for _, c := range res.Checks {
		if !c.Pass {
			t.Errorf("check %q unexpectedly failed", c.Name)
		}
	}
}

func TestEvaluate_HalfSizeBand(t *testing.T) {
	res := Evaluate(rules(), &domain.FundingSnapshot{FundingRate: 0.0005})
	if res.Stance != StanceHalfSize {
		t.Errorf("expected HALF_SIZE, got %s", res.Stance)
	}
}

func TestEvaluate_NoTradeAboveCeiling(t *testing.T) {
	res := Evaluate(rules(), &domain.FundingSnapshot{FundingRate: 0.0012})
	if res.Stance != StanceNoTrade {
		t.Errorf("expected NO_TRADE, got %s", res.Stance)
	}
}

func TestEvaluate_NegativeFundingUsesMagnitude(t *testing.T) {
	res := Evaluate(rules(), &domain.FundingSnapshot{FundingRate: -0.0012})
	if res.Stance != StanceNoTrade {
		t.Errorf("expected NO_TRADE for deeply negative funding, got %s", res.Stance)
	}
}

func TestEvaluate_ExactThresholdRestricts(t *testing.T) {
	// Thresholds are exclusive: landing exactly on one restricts.
	res := Evaluate(rules(), &domain.FundingSnapshot{FundingRate: 0.0003})
	if res.Stance != StanceHalfSize {
		t.Errorf("expected HALF_SIZE at the boundary, got %s", res.Stance)
	}
	res = Evaluate(rules(), &domain.FundingSnapshot{FundingRate: 0.0010})
	if res.Stance != StanceNoTrade {
		t.Errorf("expected NO_TRADE at the ceiling, got %s", res.Stance)
	}
}

func TestEvaluate_MissingSnapshotDefaultsFullSize(t *testing.T) {
	res := Evaluate(rules(), nil)
	if res.Stance != StanceFullSize {
		t.Errorf("expected FULL_SIZE without a snapshot, got %s", res.Stance)
	}
	if res.HasQuote {
		t.Error("HasQuote must be false without a snapshot")
	}
}
