package memory

import (
	"context"
	"sync"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/interfaces"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

// Store is the in-memory implementation of interfaces.LedgerStore. Entries
// live in a slice in write order; transfers are kept by ID. All methods are
// safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	entries   []models.LedgerEntry
	transfers map[string]models.Transfer
}

func NewStore() *Store {
	return &Store{
		transfers: make(map[string]models.Transfer),
	}
}

// SaveTransfer records the transfer and both entries under one lock, so
// readers never observe a half-written pair.
func (s *Store) SaveTransfer(ctx context.Context, transfer models.Transfer, debit, credit models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transfers[transfer.ID] = transfer
	s.entries = append(s.entries, debit, credit)
	return nil
}

func (s *Store) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	return nil
}

func (s *Store) GetEntriesByAccount(ctx context.Context, accountID string) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.LedgerEntry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			result = append(result, e)
		}
	}
	return result, nil
}

// GetLedgerEntries returns a copy so callers cannot mutate internal state.
func (s *Store) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]models.LedgerEntry, len(s.entries))
	copy(copied, s.entries)
	return copied, nil
}

var _ interfaces.LedgerStore = (*Store)(nil)
