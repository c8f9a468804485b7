package engine

import (
	"time"

	"github.com/pkg/errors"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

// transactionLog is the ordered, append-only registry of proposed
// transactions. Indices start at 0, increase by one per proposal and are
// never reused. Like roleStore, it relies on the owning engine for
// serialization.
type transactionLog struct {
	txs []models.Transaction
}

func newTransactionLog() *transactionLog {
	return &transactionLog{}
}

// append creates a pending transaction and returns its index.
func (l *transactionLog) append(proposer, recipient models.Identity, value uint64) uint64 {
	index := uint64(len(l.txs))
	l.txs = append(l.txs, models.Transaction{
		Index:      index,
		Recipient:  recipient,
		Value:      value,
		ProposedBy: proposer,
		CreatedAt:  time.Now().UTC(),
	})
	return index
}

// get returns a pointer into the log so callers mutate the record in place.
func (l *transactionLog) get(index uint64) (*models.Transaction, error) {
	if index >= uint64(len(l.txs)) {
		return nil, errors.Wrapf(ErrTxNotFound, "index %d", index)
	}
	return &l.txs[index], nil
}

func (l *transactionLog) count() uint64 {
	return uint64(len(l.txs))
}

// confirmationTracker is the per-transaction, per-signer confirmation
// matrix. A record exists (true) for exactly the signers holding an active
// confirmation; the transaction's confirmation count always equals the
// number of records for its index. Records survive execution as an audit
// trail, they are only frozen by the engine refusing further mutation.
type confirmationTracker struct {
	records map[uint64]map[models.Identity]bool
}

func newConfirmationTracker() *confirmationTracker {
	return &confirmationTracker{
		records: make(map[uint64]map[models.Identity]bool),
	}
}

func (t *confirmationTracker) isConfirmed(index uint64, signer models.Identity) bool {
	return t.records[index][signer]
}

func (t *confirmationTracker) confirm(index uint64, signer models.Identity) error {
	if t.records[index][signer] {
		return errors.Wrapf(ErrAlreadyConfirmed, "tx %d by %s", index, signer)
	}
	if t.records[index] == nil {
		t.records[index] = make(map[models.Identity]bool)
	}
	t.records[index][signer] = true
	return nil
}

func (t *confirmationTracker) revoke(index uint64, signer models.Identity) error {
	if !t.records[index][signer] {
		return errors.Wrapf(ErrNotConfirmed, "tx %d by %s", index, signer)
	}
	delete(t.records[index], signer)
	return nil
}

// count derives the confirmation count from the records. The engine keeps
// the transaction's cached count equal to this at all times.
func (t *confirmationTracker) count(index uint64) int {
	return len(t.records[index])
}

// confirmedBy returns the signers holding an active confirmation on index.
func (t *confirmationTracker) confirmedBy(index uint64) []models.Identity {
	out := make([]models.Identity, 0, len(t.records[index]))
	for signer := range t.records[index] {
		out = append(out, signer)
	}
	return out
}
