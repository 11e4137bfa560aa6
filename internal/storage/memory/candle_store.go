package memory

import (
	"context"
	"sort"
	"sync"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[string]map[int64]domain.Candle // series key -> open time -> bar
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		data: make(map[string]map[int64]domain.Candle),
	}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

func seriesKey(instID, bar string) string {
	return instID + "|" + bar
}

// InsertBatch stores candles, replacing bars with the same open time.
func (s *CandleStore) InsertBatch(_ context.Context, instID, bar string, candles []domain.Candle) error {
	if instID == "" || bar == "" {
		return storage.ErrInvalidInput
	}
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := seriesKey(instID, bar)
	series, exists := s.data[key]
	if !exists {
		series = make(map[int64]domain.Candle, len(candles))
		s.data[key] = series
	}
	for _, c := range candles {
		series[c.OpenTimeMs] = c
	}
	return nil
}

// GetRange retrieves candles with open time in [startMs, endMs], time ASC.
func (s *CandleStore) GetRange(_ context.Context, instID, bar string, startMs, endMs int64) ([]domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, exists := s.data[seriesKey(instID, bar)]
	if !exists {
		return nil, nil
	}

	var result []domain.Candle
	for ts, c := range series {
		if ts >= startMs && ts <= endMs {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].OpenTimeMs < result[j].OpenTimeMs
	})
	return result, nil
}
