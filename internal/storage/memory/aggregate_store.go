package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/storage"
)

// AggregateStore is an in-memory implementation of storage.AggregateStore.
type AggregateStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DailyAggregate // keyed by (window_days, as_of_ms)
}

// NewAggregateStore creates a new in-memory aggregate store.
func NewAggregateStore() *AggregateStore {
	return &AggregateStore{
		data: make(map[string]*domain.DailyAggregate),
	}
}

// Compile-time interface check.
var _ storage.AggregateStore = (*AggregateStore)(nil)

func aggregateKey(windowDays int, asOfMs int64) string {
	return fmt.Sprintf("%d|%d", windowDays, asOfMs)
}

// Insert adds a snapshot. Returns ErrDuplicateKey if the key exists.
func (s *AggregateStore) Insert(_ context.Context, a *domain.DailyAggregate) error {
	if a == nil || a.WindowDays <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := aggregateKey(a.WindowDays, a.AsOfMs)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[key] = cloneAggregate(a)
	return nil
}

// GetLatest retrieves the most recent snapshot for a window length.
func (s *AggregateStore) GetLatest(_ context.Context, windowDays int) (*domain.DailyAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.DailyAggregate
	for _, a := range s.data {
		if a.WindowDays != windowDays {
			continue
		}
		if latest == nil || a.AsOfMs > latest.AsOfMs {
			latest = a
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return cloneAggregate(latest), nil
}

// ListByWindow retrieves all snapshots for a window length, as_of ASC.
func (s *AggregateStore) ListByWindow(_ context.Context, windowDays int) ([]*domain.DailyAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailyAggregate
	for _, a := range s.data {
		if a.WindowDays == windowDays {
			result = append(result, cloneAggregate(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AsOfMs < result[j].AsOfMs
	})
	return result, nil
}

func cloneAggregate(a *domain.DailyAggregate) *domain.DailyAggregate {
	out := *a
	out.EquityCurve = append([]float64(nil), a.EquityCurve...)

	if a.ExitBreakdown != nil {
		out.ExitBreakdown = make(map[string]int64, len(a.ExitBreakdown))
		for k, v := range a.ExitBreakdown {
			out.ExitBreakdown[k] = v
		}
	}
	if a.SideBreakdown != nil {
		out.SideBreakdown = make(map[string]int64, len(a.SideBreakdown))
		for k, v := range a.SideBreakdown {
			out.SideBreakdown[k] = v
		}
	}
	return &out
}
