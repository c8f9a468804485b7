package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a single double-entry record for an account.
type LedgerEntry struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"` // negative for debits, positive for credits
	CreatedAt time.Time       `json:"created_at"`
}

// Transfer is the intent behind a debit/credit entry pair. It records which
// executed authorization moved the value, for reconciliation.
type Transfer struct {
	ID          string          `json:"id"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}
