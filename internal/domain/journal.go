package domain

// FundingSnapshot is the OKX perp funding state captured at plan time.
type FundingSnapshot struct {
	InstID            string
	FundingRate       float64
	Premium           float64
	FundingTimeMs     int64
	NextFundingTimeMs int64
	TsMs              int64
	Method            string
}

// Levels are the derived support/resistance bands for the day.
type Levels struct {
	Support    []float64
	Resistance []float64
}

// LogNote is one manual execution-log line appended during the session.
type LogNote struct {
	TsMs   int64
	Source string // "cli" | "workflow_dispatch"
	Text   string
}

// JournalEntry is one trading day of the journal, keyed by ET date.
// The plan is written once in the morning; the outcome is attached exactly
// once by the scoring pipeline and treated as final unless a re-score is
// explicitly forced.
type JournalEntry struct {
	EntryID     string // deterministic hash, see idhash
	Date        string // ET calendar date, "2006-01-02"
	CreatedAtMs int64

	SpotUSD float64
	Funding *FundingSnapshot
	Levels  Levels
	Rules   RiskRules
	Plan    TradePlan

	Outcome    *OutcomeRecord // nil until scored
	ScoredAtMs int64          // 0 until scored
	Result     string         // e.g. "long:take_profit_1", "no_trigger"
	RealizedR  float64

	ExecutionLog []LogNote
}

// Scored reports whether an outcome has been attached.
func (e *JournalEntry) Scored() bool {
	return e.Outcome != nil
}
