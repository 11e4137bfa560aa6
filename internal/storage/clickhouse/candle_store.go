package clickhouse

import (
	"context"
	"fmt"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/storage"
)

// CandleStore implements storage.CandleStore using ClickHouse. The candles
// table is a ReplacingMergeTree keyed by (inst_id, bar, open_time_ms), so
// re-inserting a cached window is naturally idempotent.
type CandleStore struct {
	conn *Conn
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(conn *Conn) *CandleStore {
	return &CandleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBatch stores candles for an instrument/bar.
func (s *CandleStore) InsertBatch(ctx context.Context, instID, bar string, candles []domain.Candle) error {
	if instID == "" || bar == "" {
		return storage.ErrInvalidInput
	}
	if len(candles) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candles (inst_id, bar, open_time_ms, open, high, low, close)
	`)
	if err != nil {
		return fmt.Errorf("prepare candle batch: %w", err)
	}

	for _, c := range candles {
		if err := batch.Append(instID, bar, c.OpenTimeMs, c.Open, c.High, c.Low, c.Close); err != nil {
			return fmt.Errorf("append candle to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send candle batch: %w", err)
	}
	return nil
}

// GetRange retrieves candles with open time in [startMs, endMs], time ASC.
func (s *CandleStore) GetRange(ctx context.Context, instID, bar string, startMs, endMs int64) ([]domain.Candle, error) {
	query := `
		SELECT open_time_ms, open, high, low, close
		FROM candles FINAL
		WHERE inst_id = ? AND bar = ? AND open_time_ms >= ? AND open_time_ms <= ?
		ORDER BY open_time_ms ASC
	`
	rows, err := s.conn.Query(ctx, query, instID, bar, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("query candle range: %w", err)
	}
	defer rows.Close()

	var candles []domain.Candle
	for rows.Next() {
		var c domain.Candle
		if err := rows.Scan(&c.OpenTimeMs, &c.Open, &c.High, &c.Low, &c.Close); err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}
	return candles, nil
}
