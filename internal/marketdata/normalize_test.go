package marketdata

import (
	"testing"

	"btc-journal-lab/internal/domain"
)

func bar(ts int64, o, h, l, c float64) domain.Candle {
	return domain.Candle{OpenTimeMs: ts, Open: o, High: h, Low: l, Close: c}
}

func TestNormalize_DedupesAndSorts(t *testing.T) {
	in := []domain.Candle{
		bar(3000, 1, 2, 0.5, 1.5),
		bar(1000, 1, 2, 0.5, 1.5),
		bar(3000, 9, 10, 8, 9.5), // duplicate open time, last wins
		bar(2000, 1, 2, 0.5, 1.5),
	}
	out := Normalize(in)
	if len(out) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(out))
	}
	for i, want := range []int64{1000, 2000, 3000} {
		if out[i].OpenTimeMs != want {
			t.Errorf("candle %d: open time %d, want %d", i, out[i].OpenTimeMs, want)
		}
	}
	if out[2].Close != 9.5 {
		t.Errorf("duplicate resolution kept close %v, want 9.5", out[2].Close)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if out := Normalize(nil); out != nil {
		t.Errorf("expected nil, got %v", out)
	}
}

func TestValidate(t *testing.T) {
	good := []domain.Candle{
		bar(1000, 100, 105, 99, 104),
		bar(2000, 104, 106, 103, 105),
	}
	if err := Validate(good); err != nil {
		t.Errorf("valid series rejected: %v", err)
	}

	cases := map[string][]domain.Candle{
		"empty":           nil,
		"non-increasing":  {bar(2000, 1, 2, 0.5, 1), bar(2000, 1, 2, 0.5, 1)},
		"high below low":  {bar(1000, 1, 0.5, 2, 1)},
		"open above high": {bar(1000, 3, 2, 0.5, 1)},
		"close below low": {bar(1000, 1, 2, 0.5, 0.1)},
	}
	for name, series := range cases {
		if err := Validate(series); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
