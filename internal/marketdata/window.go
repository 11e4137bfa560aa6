package marketdata

import (
	"fmt"
	"time"
)

// DateLayout is the journal's calendar date format, always an ET date.
const DateLayout = "2006-01-02"

// Session boundaries in Eastern time. The plan is written at 06:00 and the
// idea expires at the end of the same calendar day.
const (
	sessionStartHour = 6
	runWindowMinutes = 10
)

var etLocation *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(fmt.Sprintf("load America/New_York: %v", err))
	}
	etLocation = loc
}

// ET returns the Eastern time location, DST-aware.
func ET() *time.Location { return etLocation }

// DayWindow returns the scoring window for an ET calendar date as Unix ms:
// 06:00:00 ET through 23:59:59 ET of the same date. Boundaries are wall-clock
// times in the ET zone, not offsets from midnight, so DST transition days
// keep the full session instead of shifting by the skipped or repeated hour.
func DayWindow(date string) (startMs, endMs int64, err error) {
	day, err := time.ParseInLocation(DateLayout, date, etLocation)
	if err != nil {
		return 0, 0, fmt.Errorf("parse date %q: %w", date, err)
	}
	y, m, d := day.Date()
	start := time.Date(y, m, d, sessionStartHour, 0, 0, 0, etLocation)
	end := time.Date(y, m, d, 23, 59, 59, 0, etLocation)
	return start.UnixMilli(), end.UnixMilli(), nil
}

// InRunWindow reports whether now falls inside the morning plan slot,
// 06:00 to 06:10 ET. Scheduled runs outside the slot are skipped so a late
// retry cannot write a plan with stale levels.
func InRunWindow(now time.Time) bool {
	et := now.In(etLocation)
	return et.Hour() == sessionStartHour && et.Minute() < runWindowMinutes
}

// TodayET formats now as an ET calendar date.
func TodayET(now time.Time) string {
	return now.In(etLocation).Format(DateLayout)
}

// YesterdayET formats the ET calendar date one day before now. Scoring runs
// after midnight ET and always targets the completed previous session.
func YesterdayET(now time.Time) string {
	return now.In(etLocation).AddDate(0, 0, -1).Format(DateLayout)
}
