package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/storage"
)

func sampleEntry(date string) *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:     "id-" + date,
		Date:        date,
		CreatedAtMs: 1700000000000,
		SpotUSD:     100000,
		Funding: &domain.FundingSnapshot{
			InstID:      "BTC-USDT-SWAP",
			FundingRate: 0.0002,
			Premium:     0.0001,
			TsMs:        1699990000000,
		},
		Levels: domain.Levels{
			Support:    []float64{98500},
			Resistance: []float64{101500},
		},
		Rules: domain.RiskRules{
			MaxRiskPerIdeaR:          1.0,
			DailyStopR:               2.0,
			FundingHalfSizeThreshold: 0.0003,
			FundingNoTradeThreshold:  0.0010,
		},
		Plan: domain.TradePlan{
			PlanID: "BTC-" + date + "-0600-ET-TEST",
			Long: domain.SidePlan{
				Side:         domain.SideLong,
				TriggerText:  "15m close >= 100200.00",
				TriggerOp:    domain.TriggerGE,
				TriggerLevel: 100200,
				Entry:        100300,
				Stop:         98303,
				TakeProfits:  []float64{101000, 101500},
			},
			Short: domain.SidePlan{
				Side:         domain.SideShort,
				TriggerText:  "15m close <= 99800.00",
				TriggerOp:    domain.TriggerLE,
				TriggerLevel: 99800,
				Entry:        99700,
				Stop:         101703,
				TakeProfits:  []float64{99000, 98500},
			},
		},
	}
}

func TestJournalStore_InsertAndGetRoundtrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	ctx := context.Background()

	e := sampleEntry("2025-01-15")
	require.NoError(t, store.Insert(ctx, e))

	got, err := store.GetByDate(ctx, "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, e.EntryID, got.EntryID)
	assert.Equal(t, e.SpotUSD, got.SpotUSD)
	require.NotNil(t, got.Funding)
	assert.Equal(t, e.Funding.FundingRate, got.Funding.FundingRate)
	assert.Equal(t, e.Plan.Long.TakeProfits, got.Plan.Long.TakeProfits)
	assert.Equal(t, e.Plan.Short.TriggerOp, got.Plan.Short.TriggerOp)
	assert.Nil(t, got.Outcome)
	assert.Empty(t, got.ExecutionLog)

	byID, err := store.GetByID(ctx, e.EntryID)
	require.NoError(t, err)
	assert.Equal(t, e.Date, byID.Date)
}

func TestJournalStore_DuplicateDate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleEntry("2025-01-15")))

	dup := sampleEntry("2025-01-15")
	dup.EntryID = "different-id"
	assert.ErrorIs(t, store.Insert(ctx, dup), storage.ErrDuplicateKey)
}

func TestJournalStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	ctx := context.Background()

	_, err := store.GetByDate(ctx, "2025-01-15")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJournalStore_ListRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	ctx := context.Background()

	for _, date := range []string{"2025-01-17", "2025-01-15", "2025-01-16", "2025-02-01"} {
		require.NoError(t, store.Insert(ctx, sampleEntry(date)))
	}

	got, err := store.ListRange(ctx, "2025-01-15", "2025-01-31")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-01-15", got[0].Date)
	assert.Equal(t, "2025-01-16", got[1].Date)
	assert.Equal(t, "2025-01-17", got[2].Date)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestJournalStore_AttachOutcomeOnce(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleEntry("2025-01-15")))

	upd := &storage.OutcomeUpdate{
		Outcome: &domain.OutcomeRecord{
			TriggeredSide: domain.TriggeredLong,
			TriggerTimeMs: 1,
			Filled:        true,
			FillTimeMs:    2,
			ExitReason:    domain.ExitReasonTakeProfit(1),
			ExitPrice:     101000,
			ExitTimeMs:    3,
			MaxFavorableR: 1.4,
			MaxAdverseR:   0.2,
			RealizedR:     0.35,
		},
		Result:     "long:take_profit_1",
		RealizedR:  0.35,
		ScoredAtMs: 1700001000000,
	}
	require.NoError(t, store.AttachOutcome(ctx, "2025-01-15", upd))

	got, err := store.GetByDate(ctx, "2025-01-15")
	require.NoError(t, err)
	require.True(t, got.Scored())
	assert.Equal(t, "long:take_profit_1", got.Result)
	assert.Equal(t, 0.35, got.RealizedR)
	assert.Equal(t, domain.TriggeredLong, got.Outcome.TriggeredSide)

	// Second attach without force fails.
	assert.ErrorIs(t, store.AttachOutcome(ctx, "2025-01-15", upd), storage.ErrAlreadyScored)

	// Forced re-score succeeds.
	upd.Force = true
	upd.Result = "long:stopped"
	require.NoError(t, store.AttachOutcome(ctx, "2025-01-15", upd))

	got, err = store.GetByDate(ctx, "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, "long:stopped", got.Result)
}

func TestJournalStore_AttachOutcomeMissingDate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	err := store.AttachOutcome(context.Background(), "2025-01-15", &storage.OutcomeUpdate{
		Outcome: &domain.OutcomeRecord{TriggeredSide: domain.TriggeredNone},
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJournalStore_AppendNote(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleEntry("2025-01-15")))

	notes := []domain.LogNote{
		{TsMs: 1, Source: "cli", Text: "armed long"},
		{TsMs: 2, Source: "workflow_dispatch", Text: "filled"},
	}
	for _, n := range notes {
		require.NoError(t, store.AppendNote(ctx, "2025-01-15", n))
	}

	got, err := store.GetByDate(ctx, "2025-01-15")
	require.NoError(t, err)
	require.Len(t, got.ExecutionLog, 2)
	assert.Equal(t, "armed long", got.ExecutionLog[0].Text)
	assert.Equal(t, "workflow_dispatch", got.ExecutionLog[1].Source)

	assert.ErrorIs(t, store.AppendNote(ctx, "2025-09-09", notes[0]), storage.ErrNotFound)
}
