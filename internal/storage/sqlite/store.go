// Package sqlite backs the account ledger with an embedded SQLite file via
// the pure-Go modernc.org/sqlite driver, for single-node deployments that
// want durability without a database server.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/interfaces"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and prepares
// the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS transfers (
		id           TEXT PRIMARY KEY,
		from_account TEXT NOT NULL,
		to_account   TEXT NOT NULL,
		amount       TEXT NOT NULL,
		created_at   TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id         TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		amount     TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

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
	VALUES (?,?,?,?,?)`
	if _, err = dbTx.ExecContext(ctx, insertTransfer,
		transfer.ID, transfer.FromAccount, transfer.ToAccount, transfer.Amount.String(), transfer.CreatedAt); err != nil {
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
	VALUES (?,?,?,?)`
	_, err := dbTx.ExecContext(ctx, query, entry.ID, entry.AccountID, entry.Amount.String(), entry.CreatedAt)
	return err
}

func (s *Store) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	const query = `INSERT INTO ledger_entries (id, account_id, amount, created_at)
	VALUES (?,?,?,?)`
	_, err := s.db.ExecContext(ctx, query, entry.ID, entry.AccountID, entry.Amount.String(), entry.CreatedAt)
	return err
}

func (s *Store) GetEntriesByAccount(ctx context.Context, accountID string) ([]models.LedgerEntry, error) {
	const query = `SELECT id, account_id, amount, created_at FROM ledger_entries
	WHERE account_id = ? ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (s *Store) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	const query = `SELECT id, account_id, amount, created_at FROM ledger_entries ORDER BY rowid`

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
		var amount string
		if err := rows.Scan(&entry.ID, &entry.AccountID, &amount, &entry.CreatedAt); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		entry.Amount = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ interfaces.LedgerStore = (*Store)(nil)
