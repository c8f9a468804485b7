package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

func TestSaveTransferRecordsBothEntries(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	now := time.Now().UTC()
	transfer := models.Transfer{
		ID:          uuid.New().String(),
		FromAccount: "treasury",
		ToAccount:   "alice",
		Amount:      decimal.NewFromInt(50),
		CreatedAt:   now,
	}
	debit := models.LedgerEntry{ID: transfer.ID + "-debit", AccountID: "treasury", Amount: decimal.NewFromInt(-50), CreatedAt: now}
	credit := models.LedgerEntry{ID: transfer.ID + "-credit", AccountID: "alice", Amount: decimal.NewFromInt(50), CreatedAt: now}

	require.NoError(t, s.SaveTransfer(ctx, transfer, debit, credit))

	all, err := s.GetLedgerEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, debit, all[0])
	require.Equal(t, credit, all[1])
}

func TestGetEntriesByAccountFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for _, account := range []string{"a", "b", "a"} {
		entry := models.LedgerEntry{
			ID:        uuid.New().String(),
			AccountID: account,
			Amount:    decimal.NewFromInt(1),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, s.SaveEntry(ctx, entry))
	}

	entries, err := s.GetEntriesByAccount(ctx, "a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Equal(t, "a", e.AccountID)
	}

	entries, err = s.GetEntriesByAccount(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestGetLedgerEntriesReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	entry := models.LedgerEntry{ID: "e1", AccountID: "a", Amount: decimal.NewFromInt(1)}
	require.NoError(t, s.SaveEntry(ctx, entry))

	first, err := s.GetLedgerEntries(ctx)
	require.NoError(t, err)
	first[0].AccountID = "tampered"

	second, err := s.GetLedgerEntries(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", second[0].AccountID)
}
