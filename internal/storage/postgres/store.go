package postgres

import (
	"context"
	"database/sql"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/interfaces"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

// Store is the PostgreSQL implementation of interfaces.LedgerStore.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the transfers and ledger_entries tables when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS transfers (
		id           TEXT PRIMARY KEY,
		from_account TEXT NOT NULL,
		to_account   TEXT NOT NULL,
		amount       NUMERIC NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id         TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		amount     NUMERIC NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveTransfer writes the transfer record and both entries inside one
// database transaction.
func (s *Store) SaveTransfer(ctx context.Context, transfer models.Transfer, debit, credit models.LedgerEntry) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const insertTransfer = `INSERT INTO transfers (id, from_account, to_account, amount, created_at)
	VALUES ($1,$2,$3,$4,$5)`
	if _, err = dbTx.ExecContext(ctx, insertTransfer,
		transfer.ID, transfer.FromAccount, transfer.ToAccount, transfer.Amount, transfer.CreatedAt); err != nil {
		return err
	}

	if err = saveEntryTx(ctx, dbTx, debit); err != nil {
		return err
	}
	if err = saveEntryTx(ctx, dbTx, credit); err != nil {
		return err
	}
	err = dbTx.Commit()
	return err
}

func saveEntryTx(ctx context.Context, dbTx *sql.Tx, entry models.LedgerEntry) error {
	const query = `INSERT INTO ledger_entries (id, account_id, amount, created_at)
	VALUES ($1,$2,$3,$4)`
	_, err := dbTx.ExecContext(ctx, query, entry.ID, entry.AccountID, entry.Amount, entry.CreatedAt)
	return err
}

func (s *Store) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	const query = `INSERT INTO ledger_entries (id, account_id, amount, created_at)
	VALUES ($1,$2,$3,$4)`
	_, err := s.db.ExecContext(ctx, query, entry.ID, entry.AccountID, entry.Amount, entry.CreatedAt)
	return err
}

func (s *Store) GetEntriesByAccount(ctx context.Context, accountID string) ([]models.LedgerEntry, error) {
	const query = `SELECT id, account_id, amount, created_at FROM ledger_entries
	WHERE account_id = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (s *Store) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	const query = `SELECT id, account_id, amount, created_at FROM ledger_entries ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Amount, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ interfaces.LedgerStore = (*Store)(nil)
