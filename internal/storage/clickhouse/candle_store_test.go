package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btc-journal-lab/internal/domain"
)

func chFlat(ts int64, price float64) domain.Candle {
	return domain.Candle{OpenTimeMs: ts, Open: price, High: price + 1, Low: price - 1, Close: price}
}

func TestCandleStore_BatchInsertAndRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	candles := []domain.Candle{chFlat(1000, 101), chFlat(2000, 102), chFlat(3000, 103)}
	require.NoError(t, store.InsertBatch(ctx, "BTC-USDT-SWAP", "15m", candles))

	got, err := store.GetRange(ctx, "BTC-USDT-SWAP", "15m", 1000, 2000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1000), got[0].OpenTimeMs)
	assert.Equal(t, int64(2000), got[1].OpenTimeMs)
	assert.Equal(t, 102.0, got[1].Close)
}

func TestCandleStore_ReinsertIsIdempotent(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, "BTC-USDT-SWAP", "15m", []domain.Candle{chFlat(1000, 101)}))
	require.NoError(t, store.InsertBatch(ctx, "BTC-USDT-SWAP", "15m", []domain.Candle{chFlat(1000, 105)}))

	got, err := store.GetRange(ctx, "BTC-USDT-SWAP", "15m", 0, 5000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 105.0, got[0].Close)
}

func TestCandleStore_EmptyBatchAndMissingSeries(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, "BTC-USDT-SWAP", "15m", nil))

	got, err := store.GetRange(ctx, "ETH-USDT-SWAP", "15m", 0, 5000)
	require.NoError(t, err)
	assert.Empty(t, got)
}
