// Package ledger provides a double-entry account ledger that serves as the
// engine's custody collaborator. Value leaves a designated treasury account
// and is credited to recipients; every movement is a debit/credit entry
// pair written atomically through the configured store.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/interfaces"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

// ErrInsufficientFunds reports a transfer exceeding the treasury balance.
// The transfer writes nothing when this is returned.
var ErrInsufficientFunds = errors.New("insufficient treasury balance")

// AccountLedger implements interfaces.Ledger over a LedgerStore. The mutex
// makes the balance check and the entry write of a transfer atomic with
// respect to other transfers on the same ledger instance.
type AccountLedger struct {
	store    interfaces.LedgerStore
	treasury string
	mu       sync.Mutex
	logger   zerolog.Logger
}

func NewAccountLedger(store interfaces.LedgerStore, treasury string, logger zerolog.Logger) *AccountLedger {
	return &AccountLedger{
		store:    store,
		treasury: treasury,
		logger:   logger,
	}
}

// Balance returns the current treasury balance in smallest units.
func (l *AccountLedger) Balance(ctx context.Context) (uint64, error) {
	balance, err := l.BalanceOf(ctx, l.treasury)
	if err != nil {
		return 0, err
	}
	if balance.IsNegative() {
		// A negative treasury means the store was tampered with out of
		// band; report empty rather than wrapping around.
		return 0, nil
	}
	return balance.BigInt().Uint64(), nil
}

// Transfer atomically debits the treasury and credits the recipient.
// Either both entries and the transfer record are written, or nothing is.
func (l *AccountLedger) Transfer(ctx context.Context, recipient models.Identity, amount uint64) error {
	if recipient.IsZero() {
		return errors.New("recipient is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.BalanceOf(ctx, l.treasury)
	if err != nil {
		return err
	}
	value := decimal.NewFromUint64(amount)
	if balance.LessThan(value) {
		return errors.Wrapf(ErrInsufficientFunds, "need %s, have %s", value, balance)
	}

	now := time.Now().UTC()
	transfer := models.Transfer{
		ID:          uuid.New().String(),
		FromAccount: l.treasury,
		ToAccount:   string(recipient),
		Amount:      value,
		CreatedAt:   now,
	}
	debit := models.LedgerEntry{
		ID:        transfer.ID + "-debit",
		AccountID: l.treasury,
		Amount:    value.Neg(),
		CreatedAt: now,
	}
	credit := models.LedgerEntry{
		ID:        transfer.ID + "-credit",
		AccountID: string(recipient),
		Amount:    value,
		CreatedAt: now,
	}

	if err := l.store.SaveTransfer(ctx, transfer, debit, credit); err != nil {
		return errors.Wrap(err, "save transfer")
	}
	l.logger.Info().
		Str("transfer_id", transfer.ID).
		Str("recipient", string(recipient)).
		Uint64("amount", amount).
		Msg("transfer recorded")
	return nil
}

// Deposit credits an account directly, outside the transfer path. Used to
// fund the treasury.
func (l *AccountLedger) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if amount.Cmp(decimal.Zero) <= 0 {
		return errors.New("deposit amount must be positive")
	}
	entry := models.LedgerEntry{
		ID:        uuid.New().String() + "-deposit",
		AccountID: accountID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	return l.store.SaveEntry(ctx, entry)
}

// BalanceOf sums the entries recorded for an account.
func (l *AccountLedger) BalanceOf(ctx context.Context, accountID string) (decimal.Decimal, error) {
	entries, err := l.store.GetEntriesByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "load entries")
	}
	balance := decimal.Zero
	for _, entry := range entries {
		balance = balance.Add(entry.Amount)
	}
	return balance, nil
}

// Entries returns every entry the store holds, in recorded order.
func (l *AccountLedger) Entries(ctx context.Context) ([]models.LedgerEntry, error) {
	return l.store.GetLedgerEntries(ctx)
}

var _ interfaces.Ledger = (*AccountLedger)(nil)
