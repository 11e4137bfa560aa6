package marketdata

import (
	"testing"
	"time"
)

func TestDayWindow_WinterOffset(t *testing.T) {
	startMs, endMs, err := DayWindow("2025-01-15")
	if err != nil {
		t.Fatalf("DayWindow: %v", err)
	}

	wantStart := time.Date(2025, 1, 15, 6, 0, 0, 0, ET()).UnixMilli()
	wantEnd := time.Date(2025, 1, 15, 23, 59, 59, 0, ET()).UnixMilli()
	if startMs != wantStart {
		t.Errorf("start = %d, want %d", startMs, wantStart)
	}
	if endMs != wantEnd {
		t.Errorf("end = %d, want %d", endMs, wantEnd)
	}

	// January is EST, UTC-5: 06:00 ET is 11:00 UTC.
	utcHour := time.UnixMilli(startMs).UTC().Hour()
	if utcHour != 11 {
		t.Errorf("winter start UTC hour = %d, want 11", utcHour)
	}
}

func TestDayWindow_SummerOffset(t *testing.T) {
	startMs, _, err := DayWindow("2025-07-15")
	if err != nil {
		t.Fatalf("DayWindow: %v", err)
	}
	// July is EDT, UTC-4: 06:00 ET is 10:00 UTC.
	utcHour := time.UnixMilli(startMs).UTC().Hour()
	if utcHour != 10 {
		t.Errorf("summer start UTC hour = %d, want 10", utcHour)
	}
}

func TestDayWindow_DSTTransitionDays(t *testing.T) {
	cases := []struct {
		date      string
		wantStart string // wall clock with zone, session must not shift
		wantEnd   string
	}{
		// Spring forward: 02:00 EST jumps to 03:00 EDT, the day is 23h long.
		{"2025-03-09", "2025-03-09 06:00:00 EDT", "2025-03-09 23:59:59 EDT"},
		// Fall back: 02:00 EDT repeats as 01:00 EST, the day is 25h long.
		{"2025-11-02", "2025-11-02 06:00:00 EST", "2025-11-02 23:59:59 EST"},
		// Control date with no transition.
		{"2025-06-02", "2025-06-02 06:00:00 EDT", "2025-06-02 23:59:59 EDT"},
	}
	const layout = "2006-01-02 15:04:05 MST"
	for _, tc := range cases {
		startMs, endMs, err := DayWindow(tc.date)
		if err != nil {
			t.Fatalf("DayWindow(%s): %v", tc.date, err)
		}
		if got := time.UnixMilli(startMs).In(ET()).Format(layout); got != tc.wantStart {
			t.Errorf("%s start = %s, want %s", tc.date, got, tc.wantStart)
		}
		if got := time.UnixMilli(endMs).In(ET()).Format(layout); got != tc.wantEnd {
			t.Errorf("%s end = %s, want %s", tc.date, got, tc.wantEnd)
		}
	}
}

func TestDayWindow_NoOverlapAcrossSpringForward(t *testing.T) {
	_, endMs, err := DayWindow("2025-03-09")
	if err != nil {
		t.Fatalf("DayWindow: %v", err)
	}
	nextStartMs, _, err := DayWindow("2025-03-10")
	if err != nil {
		t.Fatalf("DayWindow: %v", err)
	}
	if endMs >= nextStartMs {
		t.Errorf("window end %d reaches into the next session start %d", endMs, nextStartMs)
	}
}

func TestDayWindow_BadDate(t *testing.T) {
	if _, _, err := DayWindow("15/01/2025"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestInRunWindow(t *testing.T) {
	cases := []struct {
		hour, min int
		want      bool
	}{
		{6, 0, true},
		{6, 5, true},
		{6, 9, true},
		{6, 10, false},
		{5, 59, false},
		{7, 0, false},
		{18, 5, false},
	}
	for _, tc := range cases {
		now := time.Date(2025, 3, 3, tc.hour, tc.min, 30, 0, ET())
		if got := InRunWindow(now); got != tc.want {
			t.Errorf("InRunWindow(%02d:%02d ET) = %v, want %v", tc.hour, tc.min, got, tc.want)
		}
	}
}

func TestYesterdayET_CrossesUTCMidnight(t *testing.T) {
	// 03:00 UTC on Jan 15 is still Jan 14 evening in New York.
	now := time.Date(2025, 1, 15, 3, 0, 0, 0, time.UTC)
	if got := TodayET(now); got != "2025-01-14" {
		t.Errorf("TodayET = %q, want 2025-01-14", got)
	}
	if got := YesterdayET(now); got != "2025-01-13" {
		t.Errorf("YesterdayET = %q, want 2025-01-13", got)
	}
}
