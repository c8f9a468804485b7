package ledger

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/storage/memory"
)

const treasury = "treasury"

func newTestLedger(t *testing.T) *AccountLedger {
	t.Helper()
	return NewAccountLedger(memory.NewStore(), treasury, zerolog.Nop())
}

func TestBalanceStartsEmpty(t *testing.T) {
	l := newTestLedger(t)
	balance, err := l.Balance(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(0), balance)
}

func TestDepositAndBalance(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	require.Error(t, l.Deposit(ctx, treasury, decimal.Zero))
	require.NoError(t, l.Deposit(ctx, treasury, decimal.NewFromInt(2500)))

	balance, err := l.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2500), balance)
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	require.NoError(t, l.Deposit(ctx, treasury, decimal.NewFromInt(1000)))

	t.Run("zero recipient rejected", func(t *testing.T) {
		require.Error(t, l.Transfer(ctx, "", 100))
	})

	t.Run("insufficient funds writes nothing", func(t *testing.T) {
		err := l.Transfer(ctx, "alice", 1001)
		require.ErrorIs(t, err, ErrInsufficientFunds)

		entries, err := l.Entries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1) // just the deposit
	})

	t.Run("transfer moves exactly amount", func(t *testing.T) {
		require.NoError(t, l.Transfer(ctx, "alice", 400))

		balance, err := l.Balance(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(600), balance)

		recipientBalance, err := l.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.True(t, recipientBalance.Equal(decimal.NewFromInt(400)))

		// one deposit plus the debit/credit pair
		entries, err := l.Entries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)
	})

	t.Run("entries always sum to the deposited total", func(t *testing.T) {
		entries, err := l.Entries(ctx)
		require.NoError(t, err)
		total := decimal.Zero
		for _, e := range entries {
			total = total.Add(e.Amount)
		}
		require.True(t, total.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("whole balance is spendable", func(t *testing.T) {
		require.NoError(t, l.Transfer(ctx, "bob", 600))
		balance, err := l.Balance(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(0), balance)
	})
}
