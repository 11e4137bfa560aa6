package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/storage"
)

// JournalStore implements storage.JournalStore using PostgreSQL. Scalar
// fields the queries filter on live in columns; the plan, levels, funding
// and outcome documents are JSONB.
type JournalStore struct {
	pool *Pool
}

// NewJournalStore creates a new JournalStore.
func NewJournalStore(pool *Pool) *JournalStore {
	return &JournalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.JournalStore = (*JournalStore)(nil)

const journalColumns = `
	date, entry_id, created_at_ms, spot_usd,
	funding, levels, rules, plan,
	outcome, scored_at_ms, result, realized_r, execution_log
`

// Insert adds a new entry. Returns ErrDuplicateKey if the date exists.
func (s *JournalStore) Insert(ctx context.Context, e *domain.JournalEntry) error {
	if e == nil || e.Date == "" || e.EntryID == "" {
		return storage.ErrInvalidInput
	}

	funding, levels, rules, plan, outcome, execLog, err := marshalEntryDocs(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.pool.Exec(ctx, query,
		e.Date, e.EntryID, e.CreatedAtMs, e.SpotUSD,
		funding, levels, rules, plan,
		outcome, e.ScoredAtMs, e.Result, e.RealizedR, execLog,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// GetByDate retrieves the entry for an ET date. Returns ErrNotFound if not exists.
func (s *JournalStore) GetByDate(ctx context.Context, date string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE date = $1`

	e, err := scanJournalEntry(s.pool.QueryRow(ctx, query, date))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get journal entry by date: %w", err)
	}
	return e, nil
}

// GetByID retrieves an entry by its deterministic ID. Returns ErrNotFound if not exists.
func (s *JournalStore) GetByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE entry_id = $1`

	e, err := scanJournalEntry(s.pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get journal entry by id: %w", err)
	}
	return e, nil
}

// ListRange retrieves entries with date in [startDate, endDate], date ASC.
func (s *JournalStore) ListRange(ctx context.Context, startDate, endDate string) ([]*domain.JournalEntry, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journal_entries
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC
	`
	rows, err := s.pool.Query(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("list journal entries by range: %w", err)
	}
	defer rows.Close()

	return scanJournalEntries(rows)
}

// ListAll retrieves every entry, date ASC.
func (s *JournalStore) ListAll(ctx context.Context) ([]*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries ORDER BY date ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all journal entries: %w", err)
	}
	defer rows.Close()

	return scanJournalEntries(rows)
}

// AttachOutcome writes the scored state for a date.
func (s *JournalStore) AttachOutcome(ctx context.Context, date string, upd *storage.OutcomeUpdate) error {
	if upd == nil || upd.Outcome == nil {
		return storage.ErrInvalidInput
	}

	outcome, err := json.Marshal(upd.Outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	query := `
		UPDATE journal_entries
		SET outcome = $2, result = $3, realized_r = $4, scored_at_ms = $5
		WHERE date = $1 AND (outcome IS NULL OR $6)
	`
	tag, err := s.pool.Exec(ctx, query,
		date, outcome, upd.Result, upd.RealizedR, upd.ScoredAtMs, upd.Force)
	if err != nil {
		return fmt.Errorf("attach outcome: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No row updated: missing entry or already scored.
	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_entries WHERE date = $1)`, date).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check journal entry exists: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrAlreadyScored
}

// AppendNote appends an execution-log note.
func (s *JournalStore) AppendNote(ctx context.Context, date string, note domain.LogNote) error {
	doc, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal log note: %w", err)
	}

	query := `
		UPDATE journal_entries
		SET execution_log = execution_log || $2::jsonb
		WHERE date = $1
	`
	tag, err := s.pool.Exec(ctx, query, date, doc)
	if err != nil {
		return fmt.Errorf("append log note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// marshalEntryDocs renders the JSONB documents for one entry. Funding and
// outcome marshal to nil when absent so the columns stay NULL.
func marshalEntryDocs(e *domain.JournalEntry) (funding, levels, rules, plan, outcome, execLog []byte, err error) {
	if e.Funding != nil {
		if funding, err = json.Marshal(e.Funding); err != nil {
			return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal funding: %w", err)
		}
	}
	if levels, err = json.Marshal(e.Levels); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal levels: %w", err)
	}
	if rules, err = json.Marshal(e.Rules); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal rules: %w", err)
	}
	if plan, err = json.Marshal(e.Plan); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal plan: %w", err)
	}
	if e.Outcome != nil {
		if outcome, err = json.Marshal(e.Outcome); err != nil {
			return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal outcome: %w", err)
		}
	}
	log := e.ExecutionLog
	if log == nil {
		log = []domain.LogNote{}
	}
	if execLog, err = json.Marshal(log); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshal execution log: %w", err)
	}
	return funding, levels, rules, plan, outcome, execLog, nil
}

// scanJournalEntry scans a single row into a JournalEntry.
func scanJournalEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var funding, levels, rules, plan, outcome, execLog []byte

	err := row.Scan(
		&e.Date, &e.EntryID, &e.CreatedAtMs, &e.SpotUSD,
		&funding, &levels, &rules, &plan,
		&outcome, &e.ScoredAtMs, &e.Result, &e.RealizedR, &execLog,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalEntryDocs(&e, funding, levels, rules, plan, outcome, execLog); err != nil {
		return nil, err
	}
	return &e, nil
}

// scanJournalEntries scans multiple rows into a slice of JournalEntry.
func scanJournalEntries(rows pgx.Rows) ([]*domain.JournalEntry, error) {
	var entries []*domain.JournalEntry

	for rows.Next() {
		var e domain.JournalEntry
		var funding, levels, rules, plan, outcome, execLog []byte

		err := rows.Scan(
			&e.Date, &e.EntryID, &e.CreatedAtMs, &e.SpotUSD,
			&funding, &levels, &rules, &plan,
			&outcome, &e.ScoredAtMs, &e.Result, &e.RealizedR, &execLog,
		)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry row: %w", err)
		}
		if err := unmarshalEntryDocs(&e, funding, levels, rules, plan, outcome, execLog); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entry rows: %w", err)
	}
	return entries, nil
}

func unmarshalEntryDocs(e *domain.JournalEntry, funding, levels, rules, plan, outcome, execLog []byte) error {
	if len(funding) > 0 {
		e.Funding = &domain.FundingSnapshot{}
		if err := json.Unmarshal(funding, e.Funding); err != nil {
			return fmt.Errorf("unmarshal funding: %w", err)
		}
	}
	if err := json.Unmarshal(levels, &e.Levels); err != nil {
		return fmt.Errorf("unmarshal levels: %w", err)
	}
	if err := json.Unmarshal(rules, &e.Rules); err != nil {
		return fmt.Errorf("unmarshal rules: %w", err)
	}
	if err := json.Unmarshal(plan, &e.Plan); err != nil {
		return fmt.Errorf("unmarshal plan: %w", err)
	}
	if len(outcome) > 0 {
		e.Outcome = &domain.OutcomeRecord{}
		if err := json.Unmarshal(outcome, e.Outcome); err != nil {
			return fmt.Errorf("unmarshal outcome: %w", err)
		}
	}
	if len(execLog) > 0 {
		if err := json.Unmarshal(execLog, &e.ExecutionLog); err != nil {
			return fmt.Errorf("unmarshal execution log: %w", err)
		}
	}
	return nil
}
