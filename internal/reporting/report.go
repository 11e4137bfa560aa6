package reporting

import (
	"time"

	"btc-journal-lab/internal/domain"
)

// Report is the rendered view of the journal at a point in time.
type Report struct {
	GeneratedAt time.Time
	WindowDays  int

	// Rows cover every journal day, oldest first.
	Rows []DayRow

	// Window holds the trailing-window aggregate, nil when nothing in the
	// window has been scored yet.
	Window *domain.DailyAggregate

	// Latest is the newest journal entry, nil for an empty journal.
	Latest *domain.JournalEntry

	// EquityCurve is cumulative realized R across all scored days.
	EquityCurve []float64
}

// DayRow is one journal day flattened for tables and CSV export.
type DayRow struct {
	Date        string
	SpotUSD     float64
	FundingRate float64
	Side        string
	Result      string
	RealizedR   float64
	Scored      bool
}
