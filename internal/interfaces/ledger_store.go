package interfaces

import (
	"context"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

// LedgerStore persists account ledger entries. SaveTransfer must write the
// transfer record and both entries atomically: a partially recorded transfer
// is never a valid outcome.
type LedgerStore interface {
	SaveTransfer(ctx context.Context, transfer models.Transfer, debit, credit models.LedgerEntry) error
	SaveEntry(ctx context.Context, entry models.LedgerEntry) error
	GetEntriesByAccount(ctx context.Context, accountID string) ([]models.LedgerEntry, error)
	GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error)
}
