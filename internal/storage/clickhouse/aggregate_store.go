package clickhouse

import (
	"context"
	"fmt"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/storage"
)

// AggregateStore implements storage.AggregateStore using ClickHouse.
type AggregateStore struct {
	conn *Conn
}

// NewAggregateStore creates a new AggregateStore.
func NewAggregateStore(conn *Conn) *AggregateStore {
	return &AggregateStore{conn: conn}
}

// Compile-time interface check.
var _ storage.AggregateStore = (*AggregateStore)(nil)

const aggregateColumns = `
	window_days, as_of_ms,
	total_r, avg_r_per_day,
	trade_days, no_trade_days,
	win_trades, loss_trades, win_rate_pct, expectancy_r,
	max_drawdown_r, max_consec_loss,
	exit_breakdown, side_breakdown, equity_curve
`

// Insert adds a snapshot. Returns ErrDuplicateKey if (window_days, as_of_ms)
// exists. MergeTree does not enforce uniqueness, so existence is checked
// explicitly first.
func (s *AggregateStore) Insert(ctx context.Context, a *domain.DailyAggregate) error {
	if a == nil || a.WindowDays <= 0 {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, a.WindowDays, a.AsOfMs)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `INSERT INTO daily_aggregates (` + aggregateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err = s.conn.Exec(ctx, query,
		int32(a.WindowDays), a.AsOfMs,
		a.TotalR, a.AvgRPerDay,
		int32(a.TradeDays), int32(a.NoTradeDays),
		int32(a.WinTrades), int32(a.LossTrades), a.WinRatePct, a.ExpectancyR,
		a.MaxDrawdownR, int32(a.MaxConsecLoss),
		breakdownOrEmpty(a.ExitBreakdown), breakdownOrEmpty(a.SideBreakdown),
		curveOrEmpty(a.EquityCurve),
	)
	if err != nil {
		return fmt.Errorf("insert daily aggregate: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot for a window length.
func (s *AggregateStore) GetLatest(ctx context.Context, windowDays int) (*domain.DailyAggregate, error) {
	query := `
		SELECT ` + aggregateColumns + `
		FROM daily_aggregates FINAL
		WHERE window_days = ?
		ORDER BY as_of_ms DESC
		LIMIT 1
	`
	row := s.conn.QueryRow(ctx, query, int32(windowDays))

	a, err := scanAggregate(row)
	if err != nil {
		return nil, storage.ErrNotFound
	}
	return a, nil
}

// ListByWindow retrieves all snapshots for a window length, as_of ASC.
func (s *AggregateStore) ListByWindow(ctx context.Context, windowDays int) ([]*domain.DailyAggregate, error) {
	query := `
		SELECT ` + aggregateColumns + `
		FROM daily_aggregates FINAL
		WHERE window_days = ?
		ORDER BY as_of_ms ASC
	`
	rows, err := s.conn.Query(ctx, query, int32(windowDays))
	if err != nil {
		return nil, fmt.Errorf("query aggregates by window: %w", err)
	}
	defer rows.Close()

	var aggregates []*domain.DailyAggregate
	for rows.Next() {
		a, err := scanAggregate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan aggregate row: %w", err)
		}
		aggregates = append(aggregates, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregate rows: %w", err)
	}
	return aggregates, nil
}

// exists checks if a snapshot with the given key exists.
func (s *AggregateStore) exists(ctx context.Context, windowDays int, asOfMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM daily_aggregates FINAL
		WHERE window_days = ? AND as_of_ms = ?
	`
	var count uint64
	if err := s.conn.QueryRow(ctx, query, int32(windowDays), asOfMs).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRow covers driver.Row and driver.Rows for scanning.
type chRow interface {
	Scan(dest ...interface{}) error
}

func scanAggregate(row chRow) (*domain.DailyAggregate, error) {
	var a domain.DailyAggregate
	var windowDays, tradeDays, noTradeDays, winTrades, lossTrades, maxConsecLoss int32
	var exitBreakdown, sideBreakdown map[string]int64
	var equityCurve []float64

	err := row.Scan(
		&windowDays, &a.AsOfMs,
		&a.TotalR, &a.AvgRPerDay,
		&tradeDays, &noTradeDays,
		&winTrades, &lossTrades, &a.WinRatePct, &a.ExpectancyR,
		&a.MaxDrawdownR, &maxConsecLoss,
		&exitBreakdown, &sideBreakdown, &equityCurve,
	)
	if err != nil {
		return nil, err
	}

	a.WindowDays = int(windowDays)
	a.TradeDays = int(tradeDays)
	a.NoTradeDays = int(noTradeDays)
	a.WinTrades = int(winTrades)
	a.LossTrades = int(lossTrades)
	a.MaxConsecLoss = int(maxConsecLoss)
	a.ExitBreakdown = exitBreakdown
	a.SideBreakdown = sideBreakdown
	a.EquityCurve = equityCurve
	return &a, nil
}

func breakdownOrEmpty(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}

func curveOrEmpty(c []float64) []float64 {
	if c == nil {
		return []float64{}
	}
	return c
}
