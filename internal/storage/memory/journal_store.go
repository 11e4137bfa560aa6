package memory

import (
	"context"
	"sort"
	"sync"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/storage"
)

// JournalStore is an in-memory implementation of storage.JournalStore.
type JournalStore struct {
	mu     sync.RWMutex
	byDate map[string]*domain.JournalEntry
}

// NewJournalStore creates a new in-memory journal store.
func NewJournalStore() *JournalStore {
	return &JournalStore{
		byDate: make(map[string]*domain.JournalEntry),
	}
}

// Compile-time interface check.
var _ storage.JournalStore = (*JournalStore)(nil)

// Insert adds a new entry. Returns ErrDuplicateKey if the date exists.
func (s *JournalStore) Insert(_ context.Context, e *domain.JournalEntry) error {
	if e == nil || e.Date == "" || e.EntryID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byDate[e.Date]; exists {
		return storage.ErrDuplicateKey
	}
	s.byDate[e.Date] = cloneEntry(e)
	return nil
}

// GetByDate retrieves the entry for an ET date.
func (s *JournalStore) GetByDate(_ context.Context, date string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.byDate[date]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneEntry(e), nil
}

// GetByID retrieves an entry by its deterministic ID.
func (s *JournalStore) GetByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.byDate {
		if e.EntryID == entryID {
			return cloneEntry(e), nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListRange retrieves entries with date in [startDate, endDate], date ASC.
func (s *JournalStore) ListRange(_ context.Context, startDate, endDate string) ([]*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.JournalEntry
	for date, e := range s.byDate {
		if date >= startDate && date <= endDate {
			result = append(result, cloneEntry(e))
		}
	}
	sortByDate(result)
	return result, nil
}

// ListAll retrieves every entry, date ASC.
func (s *JournalStore) ListAll(_ context.Context) ([]*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.JournalEntry, 0, len(s.byDate))
	for _, e := range s.byDate {
		result = append(result, cloneEntry(e))
	}
	sortByDate(result)
	return result, nil
}

// AttachOutcome writes the scored state for a date.
func (s *JournalStore) AttachOutcome(_ context.Context, date string, upd *storage.OutcomeUpdate) error {
	if upd == nil || upd.Outcome == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.byDate[date]
	if !exists {
		return storage.ErrNotFound
	}
	if e.Scored() && !upd.Force {
		return storage.ErrAlreadyScored
	}

	outcome := *upd.Outcome
	e.Outcome = &outcome
	e.Result = upd.Result
	e.RealizedR = upd.RealizedR
	e.ScoredAtMs = upd.ScoredAtMs
	return nil
}

// AppendNote appends an execution-log note.
func (s *JournalStore) AppendNote(_ context.Context, date string, note domain.LogNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.byDate[date]
	if !exists {
		return storage.ErrNotFound
	}
	e.ExecutionLog = append(e.ExecutionLog, note)
	return nil
}

// sortByDate orders entries by date ASC. Dates are ISO strings, lexical
// order is chronological.
func sortByDate(entries []*domain.JournalEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
}

// cloneEntry deep-copies an entry so callers cannot mutate stored state.
func cloneEntry(e *domain.JournalEntry) *domain.JournalEntry {
	out := *e

	if e.Funding != nil {
		funding := *e.Funding
		out.Funding = &funding
	}
	if e.Outcome != nil {
		outcome := *e.Outcome
		out.Outcome = &outcome
	}

	out.Levels.Support = append([]float64(nil), e.Levels.Support...)
	out.Levels.Resistance = append([]float64(nil), e.Levels.Resistance...)
	out.Plan.Long.TakeProfits = append([]float64(nil), e.Plan.Long.TakeProfits...)
	out.Plan.Short.TakeProfits = append([]float64(nil), e.Plan.Short.TakeProfits...)
	out.ExecutionLog = append([]domain.LogNote(nil), e.ExecutionLog...)

	return &out
}
