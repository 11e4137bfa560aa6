package planner

import (
	"testing"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/sim"
)

func TestBuild_LevelDerivation(t *testing.T) {
	entry, err := Build(DefaultConfig(), "2025-03-14", 1741953600000, 100000, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := entry.Levels.Support[0]; got != 98500 {
		t.Errorf("expected support 98500, got %f", got)
	}
	if got := entry.Levels.Resistance[0]; got != 101500 {
		t.Errorf("expected resistance 101500, got %f", got)
	}

	long := entry.Plan.Long
	if long.TriggerLevel != 100200 {
		t.Errorf("expected long trigger 100200, got %f", long.TriggerLevel)
	}
	if long.Entry != 100300 {
		t.Errorf("expected long entry 100300, got %f", long.Entry)
	}
	if long.Stop != 98303 { // support * 0.998
		t.Errorf("expected long stop 98303, got %f", long.Stop)
	}
	if len(long.TakeProfits) != 2 || long.TakeProfits[0] != 101000 || long.TakeProfits[1] != 101500 {
		t.Errorf("unexpected long targets: %v", long.TakeProfits)
	}

	short := entry.Plan.Short
	if short.TriggerLevel != 99800 {
		t.Errorf("expected short trigger 99800, got %f", short.TriggerLevel)
	}
	if short.Entry != 99700 {
		t.Errorf("expected short entry 99700, got %f", short.Entry)
	}
	if short.Stop != 101703 { // resistance * 1.002
		t.Errorf("expected short stop 101703, got %f", short.Stop)
	}
}

func TestBuild_PlanInvariants(t *testing.T) {
	entry, err := Build(DefaultConfig(), "2025-03-14", 0, 87362.71, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	long := entry.Plan.Long
	if long.Stop >= long.Entry {
		t.Errorf("long stop %f must sit below entry %f", long.Stop, long.Entry)
	}
	short := entry.Plan.Short
	if short.Stop <= short.Entry {
		t.Errorf("short stop %f must sit above entry %f", short.Stop, short.Entry)
	}

	// Targets come nearest-to-entry first for the first-touch exit rule.
	for _, side := range []domain.SidePlan{long, short} {
		prev := -1.0
		for _, tp := range side.TakeProfits {
			d := tp - side.Entry
			if d < 0 {
				d = -d
			}
			if prev >= 0 && d < prev {
				t.Errorf("%s targets not in distance order: %v", side.Side, side.TakeProfits)
			}
			prev = d
		}
	}
}

func TestBuild_TriggerTextRoundTrips(t *testing.T) {
	entry, err := Build(DefaultConfig(), "2025-03-14", 0, 87362.71, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, side := range []domain.SidePlan{entry.Plan.Long, entry.Plan.Short} {
		op, level, err := sim.ParseTrigger(side.TriggerText)
		if err != nil {
			t.Fatalf("%s trigger text %q unparsable: %v", side.Side, side.TriggerText, err)
		}
		if op != side.TriggerOp {
			t.Errorf("%s trigger op mismatch: text %q vs %q", side.Side, op, side.TriggerOp)
		}
		if level != side.TriggerLevel {
			t.Errorf("%s trigger level mismatch: text %f vs %f", side.Side, level, side.TriggerLevel)
		}
	}
}

func TestBuild_RejectsNonPositiveSpot(t *testing.T) {
	if _, err := Build(DefaultConfig(), "2025-03-14", 0, 0, nil); err == nil {
		t.Error("expected error for zero spot")
	}
	if _, err := Build(DefaultConfig(), "2025-03-14", 0, -10, nil); err == nil {
		t.Error("expected error for negative spot")
	}
}

func TestBuild_DeterministicEntryID(t *testing.T) {
	a, err := Build(DefaultConfig(), "2025-03-14", 100, 87362.71, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, err := Build(DefaultConfig(), "2025-03-14", 200, 87362.71, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// CreatedAt is wall-clock; the ID depends only on date, plan and spot.
	if a.EntryID != b.EntryID {
		t.Error("entry ID changed with creation time")
	}
}
