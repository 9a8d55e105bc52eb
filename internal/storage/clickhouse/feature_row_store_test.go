package clickhouse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-behavior-lab/internal/domain"
	"wallet-behavior-lab/internal/storage"
)

func createTestFeatureRow(mint string, endTs int64) *domain.MintFeatureRow {
	return &domain.MintFeatureRow{
		Mint:                mint,
		Symbol:              ptr("BONK"),
		StartTs:             1000,
		EndTs:               endTs,
		NBuys:               3,
		NSells:              1,
		EntrySpacingMinsAvg: ptr(5.0),
		EntrySpacingMinsStd: ptr(0.4),
		EntryStyle: domain.EntryStyle{
			Signal:     domain.EntryStyleTWAP,
			Confidence: 0.75,
		},
		Realized: &domain.RealizedStats{
			NClosed:        1,
			MedianGainPct:  ptr(60.0),
			P75GainPct:     ptr(60.0),
			MedianHoldMins: ptr(2.0),
		},
		VenueMix: map[string]float64{
			domain.ProgramRaydiumAMMV4: 2.0 / 3.0,
			domain.ProgramPumpFun:      1.0 / 3.0,
		},
	}
}

func TestFeatureRowStore_InsertBulkAndGetByWallet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureRowStore(conn)
	ctx := context.Background()

	// Empty insert is a no-op
	require.NoError(t, store.InsertBulk(ctx, "wallet-A", 1000, nil))

	rows := []*domain.MintFeatureRow{
		createTestFeatureRow("mint-1", 5000),
		createTestFeatureRow("mint-2", 9000),
	}
	require.NoError(t, store.InsertBulk(ctx, "wallet-A", 1000, rows))

	got, err := store.GetByWallet(ctx, "wallet-A")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by end_ts DESC
	assert.Equal(t, "mint-2", got[0].Mint)
	assert.Equal(t, "mint-1", got[1].Mint)

	row := got[1]
	require.NotNil(t, row.Symbol)
	assert.Equal(t, "BONK", *row.Symbol)
	assert.Equal(t, int64(1000), row.StartTs)
	assert.Equal(t, int64(5000), row.EndTs)
	assert.Equal(t, 3, row.NBuys)
	assert.Equal(t, 1, row.NSells)
	require.NotNil(t, row.EntrySpacingMinsAvg)
	assert.InDelta(t, 5.0, *row.EntrySpacingMinsAvg, 0.0001)
	assert.Equal(t, domain.EntryStyleTWAP, row.EntryStyle.Signal)
	assert.InDelta(t, 0.75, row.EntryStyle.Confidence, 0.0001)
	require.NotNil(t, row.Realized)
	assert.Equal(t, 1, row.Realized.NClosed)
	require.NotNil(t, row.Realized.MedianGainPct)
	assert.InDelta(t, 60.0, *row.Realized.MedianGainPct, 0.0001)
	require.NotNil(t, row.VenueMix)
	assert.InDelta(t, 2.0/3.0, row.VenueMix[domain.ProgramRaydiumAMMV4], 0.0001)
}

func TestFeatureRowStore_NullableFields(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureRowStore(conn)
	ctx := context.Background()

	row := &domain.MintFeatureRow{
		Mint:    "mint-sparse",
		Symbol:  nil,
		StartTs: 1000,
		EndTs:   2000,
		NBuys:   1,
		EntryStyle: domain.EntryStyle{
			Signal:     domain.EntryStyleSingle,
			Confidence: 0.9,
		},
		Realized: &domain.RealizedStats{},
		VenueMix: map[string]float64{domain.ProgramPumpFun: 1.0},
	}
	require.NoError(t, store.InsertBulk(ctx, "wallet-A", 1000, []*domain.MintFeatureRow{row}))

	got, err := store.GetByWallet(ctx, "wallet-A")
	require.NoError(t, err)
	require.Len(t, got, 1)

	// NULL columns come back as nil pointers, not zero values
	assert.Nil(t, got[0].Symbol)
	assert.Nil(t, got[0].EntrySpacingMinsAvg)
	assert.Nil(t, got[0].EntrySpacingMinsStd)
	require.NotNil(t, got[0].Realized)
	assert.Equal(t, 0, got[0].Realized.NClosed)
	assert.Nil(t, got[0].Realized.MedianGainPct)
}

func TestFeatureRowStore_GetByWalletLatestComputation(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureRowStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, "wallet-A", 1000, []*domain.MintFeatureRow{
		createTestFeatureRow("mint-old", 5000),
	}))
	require.NoError(t, store.InsertBulk(ctx, "wallet-A", 2000, []*domain.MintFeatureRow{
		createTestFeatureRow("mint-new-1", 5000),
		createTestFeatureRow("mint-new-2", 6000),
	}))

	got, err := store.GetByWallet(ctx, "wallet-A")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mint-new-2", got[0].Mint)
	assert.Equal(t, "mint-new-1", got[1].Mint)
}

func TestFeatureRowStore_InsertBulkDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureRowStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, "wallet-A", 1000, []*domain.MintFeatureRow{
		createTestFeatureRow("mint-1", 5000),
	}))

	// Same (wallet, computed_at) again
	err := store.InsertBulk(ctx, "wallet-A", 1000, []*domain.MintFeatureRow{
		createTestFeatureRow("mint-2", 6000),
	})
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey))

	// Duplicate mint inside one batch
	err = store.InsertBulk(ctx, "wallet-A", 3000, []*domain.MintFeatureRow{
		createTestFeatureRow("mint-1", 5000),
		createTestFeatureRow("mint-1", 6000),
	})
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey))
}

func TestFeatureRowStore_InsertBulkInvalid(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureRowStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, "", 1000, []*domain.MintFeatureRow{createTestFeatureRow("mint-1", 5000)})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))

	err = store.InsertBulk(ctx, "wallet-A", 1000, []*domain.MintFeatureRow{{Mint: ""}})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
}

func TestFeatureRowStore_GetByWalletEmpty(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureRowStore(conn)
	ctx := context.Background()

	got, err := store.GetByWallet(ctx, "wallet-unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}
