package storage

import (
	"context"

	"btc-journal-lab/internal/domain"
)

// OutcomeUpdate carries the scored state attached to a journal entry.
type OutcomeUpdate struct {
	Outcome    *domain.OutcomeRecord
	Result     string
	RealizedR  float64
	ScoredAtMs int64

	// Force overwrites an existing outcome; without it a second attach
	// returns ErrAlreadyScored.
	Force bool
}

// JournalStore provides access to journal entry storage. Entries are keyed
// by ET calendar date, one entry per day.
type JournalStore interface {
	// Insert adds a new entry. Returns ErrDuplicateKey if the date exists.
	Insert(ctx context.Context, e *domain.JournalEntry) error

	// GetByDate retrieves the entry for an ET date. Returns ErrNotFound if not exists.
	GetByDate(ctx context.Context, date string) (*domain.JournalEntry, error)

	// GetByID retrieves an entry by its deterministic ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListRange retrieves entries with date in [startDate, endDate], date ASC.
	ListRange(ctx context.Context, startDate, endDate string) ([]*domain.JournalEntry, error)

	// ListAll retrieves every entry, date ASC.
	ListAll(ctx context.Context) ([]*domain.JournalEntry, error)

	// AttachOutcome writes the scored state for a date. Returns ErrNotFound
	// if the entry does not exist, ErrAlreadyScored if it is scored and the
	// update is not forced.
	AttachOutcome(ctx context.Context, date string, upd *OutcomeUpdate) error

	// AppendNote appends an execution-log note. Returns ErrNotFound if the
	// entry does not exist.
	AppendNote(ctx context.Context, date string, note domain.LogNote) error
}

// CandleStore caches fetched candle windows so re-scores and verification
// runs replay the exact series the original score saw.
type CandleStore interface {
	// InsertBatch stores candles for an instrument/bar. Re-inserting the
	// same open time replaces the bar; caching is idempotent.
	InsertBatch(ctx context.Context, instID, bar string, candles []domain.Candle) error

	// GetRange retrieves candles with open time in [startMs, endMs], time ASC.
	GetRange(ctx context.Context, instID, bar string, startMs, endMs int64) ([]domain.Candle, error)
}

// AggregateStore provides access to rolled-up performance snapshots.
type AggregateStore interface {
	// Insert adds a snapshot. Returns ErrDuplicateKey if (window_days, as_of_ms) exists.
	Insert(ctx context.Context, a *domain.DailyAggregate) error

	// GetLatest retrieves the most recent snapshot for a window length.
	// Returns ErrNotFound when none exists.
	GetLatest(ctx context.Context, windowDays int) (*domain.DailyAggregate, error)

	// ListByWindow retrieves all snapshots for a window length, as_of ASC.
	ListByWindow(ctx context.Context, windowDays int) ([]*domain.DailyAggregate, error)
}
