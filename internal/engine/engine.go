// Package engine implements the multi-signer transaction authorization
// core: a set of signers jointly approve a proposed value transfer before
// it is released through an external ledger, gated by a minimum
// confirmation threshold. An administrator manages the signer set.
package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/interfaces"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models/events"
)

// Engine composes the role store, the transaction log and the confirmation
// tracker behind the public authorization operations. Every mutation runs
// under the write lock, so mutations apply atomically in a strict total
// order; readers take the read lock and always observe a consistent
// snapshot. The awaited ledger transfer inside Execute is the only blocking
// call, and the engine never retries it; retry policy belongs to callers.
type Engine struct {
	mu sync.RWMutex

	roles         *roleStore
	log           *transactionLog
	confirmations *confirmationTracker
	threshold     int

	ledger    interfaces.Ledger
	publisher interfaces.EventPublisher
	logger    zerolog.Logger
}

// Config carries the construction parameters. Publisher may be nil, in
// which case events are dropped.
type Config struct {
	Admin     models.Identity
	Signers   []models.Identity
	Threshold int
	Ledger    interfaces.Ledger
	Publisher interfaces.EventPublisher
	Logger    zerolog.Logger
}

// New validates the configuration and builds an engine. It refuses to
// construct on a zero admin, an empty or duplicated signer list, a zero
// signer identity, a threshold outside [1, len(signers)], or a nil ledger.
func New(cfg Config) (*Engine, error) {
	if cfg.Ledger == nil {
		return nil, errors.New("ledger is required")
	}
	roles := newRoleStore()
	if err := roles.grantAdmin(cfg.Admin); err != nil {
		return nil, err
	}
	if len(cfg.Signers) == 0 {
		return nil, errors.Wrap(ErrInvalidThreshold, "no signers")
	}
	for _, signer := range cfg.Signers {
		if err := roles.grantSigner(signer); err != nil {
			return nil, err
		}
	}
	if cfg.Threshold < 1 || cfg.Threshold > roles.signerCount() {
		return nil, errors.Wrapf(ErrInvalidThreshold,
			"threshold %d with %d signers", cfg.Threshold, roles.signerCount())
	}
	return &Engine{
		roles:         roles,
		log:           newTransactionLog(),
		confirmations: newConfirmationTracker(),
		threshold:     cfg.Threshold,
		ledger:        cfg.Ledger,
		publisher:     cfg.Publisher,
		logger:        cfg.Logger,
	}, nil
}

// Propose appends a pending transaction and returns its index. The balance
// check is point-in-time only; no reservation is placed on the checked
// balance, so a later Execute can still fail if the balance has dropped.
func (e *Engine) Propose(ctx context.Context, caller, recipient models.Identity, value uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireSigner(caller); err != nil {
		return 0, err
	}
	if recipient.IsZero() {
		return 0, errors.Wrap(ErrInvalidRecipient, "propose")
	}
	if value == 0 {
		return 0, errors.Wrap(ErrInvalidAmount, "propose")
	}
	balance, err := e.ledger.Balance(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "query ledger balance")
	}
	if value > balance {
		return 0, errors.Wrapf(ErrInsufficientFunds, "value %d, balance %d", value, balance)
	}

	index := e.log.append(caller, recipient, value)
	e.logger.Info().
		Uint64("index", index).
		Str("proposer", string(caller)).
		Str("recipient", string(recipient)).
		Uint64("value", value).
		Msg("transaction proposed")
	e.publish(events.TopicTransactions, events.TransactionProposed{
		EventID:    uuid.New().String(),
		Proposer:   caller,
		Index:      index,
		Recipient:  recipient,
		Value:      value,
		OccurredAt: time.Now().UTC(),
	})
	return index, nil
}

// Confirm records the caller's confirmation on a pending transaction and
// increments its confirmation count by exactly one.
func (e *Engine) Confirm(ctx context.Context, caller models.Identity, index uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.pendingTx(caller, index)
	if err != nil {
		return err
	}
	if err := e.confirmations.confirm(index, caller); err != nil {
		return err
	}
	tx.Confirmations++

	e.logger.Info().
		Uint64("index", index).
		Str("signer", string(caller)).
		Int("confirmations", tx.Confirmations).
		Msg("transaction confirmed")
	e.publish(events.TopicTransactions, events.TransactionConfirmed{
		EventID:    uuid.New().String(),
		Signer:     caller,
		Index:      index,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Revoke clears the caller's confirmation on a pending transaction and
// decrements its confirmation count.
func (e *Engine) Revoke(ctx context.Context, caller models.Identity, index uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.pendingTx(caller, index)
	if err != nil {
		return err
	}
	if err := e.confirmations.revoke(index, caller); err != nil {
		return err
	}
	// The precondition guarantees count > 0 here; the floor guards against
	// underflow all the same.
	if tx.Confirmations > 0 {
		tx.Confirmations--
	}

	e.logger.Info().
		Uint64("index", index).
		Str("signer", string(caller)).
		Int("confirmations", tx.Confirmations).
		Msg("confirmation revoked")
	e.publish(events.TopicTransactions, events.ConfirmationRevoked{
		EventID:    uuid.New().String(),
		Signer:     caller,
		Index:      index,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Execute releases a sufficiently confirmed transaction through the ledger.
// The executed flag is set before the transfer is invoked; if the transfer
// fails, the flag is rolled back so that no effect of the call persists.
// Execute is all-or-nothing across the internal transition and the external
// transfer. An already executed index always fails TxAlreadyExecuted and
// never re-invokes the ledger.
func (e *Engine) Execute(ctx context.Context, caller models.Identity, index uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.pendingTx(caller, index)
	if err != nil {
		return err
	}
	if tx.Confirmations < e.threshold {
		return errors.Wrapf(ErrInsufficientConfirmations,
			"tx %d has %d of %d", index, tx.Confirmations, e.threshold)
	}

	tx.Executed = true
	if err := e.ledger.Transfer(ctx, tx.Recipient, tx.Value); err != nil {
		tx.Executed = false
		e.logger.Error().Err(err).Uint64("index", index).Msg("ledger transfer failed, execute rolled back")
		return errors.Wrapf(ErrLedgerTransfer, "tx %d: %v", index, err)
	}

	e.logger.Info().
		Uint64("index", index).
		Str("executor", string(caller)).
		Str("recipient", string(tx.Recipient)).
		Uint64("value", tx.Value).
		Msg("transaction executed")
	e.publish(events.TopicTransactions, events.TransactionExecuted{
		EventID:    uuid.New().String(),
		Executor:   caller,
		Index:      index,
		Recipient:  tx.Recipient,
		Value:      tx.Value,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// AddSigner grants the signer role. Administrator only.
func (e *Engine) AddSigner(ctx context.Context, caller, identity models.Identity) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if err := e.roles.grantSigner(identity); err != nil {
		return err
	}

	e.logger.Info().Str("identity", string(identity)).Msg("signer added")
	e.publish(events.TopicSigners, events.SignerAdded{
		EventID:    uuid.New().String(),
		Identity:   identity,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// RemoveSigner revokes the signer role and drops the identity from the
// registry by swap-and-pop; order among the remaining signers is not
// preserved. A removal that would leave the threshold above the remaining
// signer count is rejected: lower the threshold first via SetThreshold.
// Confirmations already recorded by the removed signer stay in place.
func (e *Engine) RemoveSigner(ctx context.Context, caller, identity models.Identity) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if !e.roles.hasRole(identity, models.RoleSigner) {
		return errors.Wrapf(ErrNotSigner, "%s", identity)
	}
	if e.roles.signerCount() == 1 {
		return errors.Wrapf(ErrLastSigner, "%s", identity)
	}
	if e.threshold > e.roles.signerCount()-1 {
		return errors.Wrapf(ErrInvalidThreshold,
			"removing %s would leave %d signers below threshold %d",
			identity, e.roles.signerCount()-1, e.threshold)
	}
	if err := e.roles.revokeSigner(identity); err != nil {
		return err
	}

	e.logger.Info().Str("identity", string(identity)).Msg("signer removed")
	e.publish(events.TopicSigners, events.SignerRemoved{
		EventID:    uuid.New().String(),
		Identity:   identity,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// SetThreshold changes the minimum confirmation count. Administrator only;
// the same [1, signer count] bound as construction applies.
func (e *Engine) SetThreshold(ctx context.Context, caller models.Identity, threshold int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if threshold < 1 || threshold > e.roles.signerCount() {
		return errors.Wrapf(ErrInvalidThreshold,
			"threshold %d with %d signers", threshold, e.roles.signerCount())
	}
	e.threshold = threshold

	e.logger.Info().Int("threshold", threshold).Msg("threshold changed")
	e.publish(events.TopicSigners, events.ThresholdChanged{
		EventID:    uuid.New().String(),
		Threshold:  threshold,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// SetLedger swaps the ledger collaborator. Administrator only; installing
// the ledger that is already in place is rejected as a caller bug.
func (e *Engine) SetLedger(ctx context.Context, caller models.Identity, ledger interfaces.Ledger) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if ledger == nil {
		return errors.New("ledger is required")
	}
	if ledger == e.ledger {
		return errors.Wrap(ErrSameLedger, "set ledger")
	}
	e.ledger = ledger

	e.logger.Info().Msg("ledger updated")
	e.publish(events.TopicSigners, events.LedgerUpdated{
		EventID:    uuid.New().String(),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Signers returns the signer registry. See RemoveSigner for ordering.
func (e *Engine) Signers() []models.Identity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.roles.listSigners()
}

// HasRole reports whether identity holds role.
func (e *Engine) HasRole(identity models.Identity, role models.Role) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.roles.hasRole(identity, role)
}

// Threshold returns the current minimum confirmation count.
func (e *Engine) Threshold() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threshold
}

// TransactionCount returns the number of transactions ever proposed.
func (e *Engine) TransactionCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log.count()
}

// Transaction returns a copy of the transaction at index. Out-of-range
// indices fail TxNotFound rather than returning a zero value, so caller
// bugs are not silently masked.
func (e *Engine) Transaction(index uint64) (models.Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tx, err := e.log.get(index)
	if err != nil {
		return models.Transaction{}, err
	}
	return *tx, nil
}

// Transactions returns a copy of the whole log in proposal order.
func (e *Engine) Transactions() []models.Transaction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Transaction, len(e.log.txs))
	copy(out, e.log.txs)
	return out
}

// Confirmations returns the signers with an active confirmation on index,
// sorted for deterministic output.
func (e *Engine) Confirmations(index uint64) ([]models.Identity, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, err := e.log.get(index); err != nil {
		return nil, err
	}
	signers := e.confirmations.confirmedBy(index)
	sort.Slice(signers, func(i, j int) bool { return signers[i] < signers[j] })
	return signers, nil
}

// IsConfirmedBy reports whether signer holds an active confirmation on index.
func (e *Engine) IsConfirmedBy(index uint64, signer models.Identity) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, err := e.log.get(index); err != nil {
		return false, err
	}
	return e.confirmations.isConfirmed(index, signer), nil
}

// pendingTx runs the checks shared by Confirm, Revoke and Execute: the
// caller is a signer, the index exists and the transaction is not executed.
func (e *Engine) pendingTx(caller models.Identity, index uint64) (*models.Transaction, error) {
	if err := e.requireSigner(caller); err != nil {
		return nil, err
	}
	tx, err := e.log.get(index)
	if err != nil {
		return nil, err
	}
	if tx.Executed {
		return nil, errors.Wrapf(ErrTxAlreadyExecuted, "index %d", index)
	}
	return tx, nil
}

func (e *Engine) requireSigner(caller models.Identity) error {
	if !e.roles.hasRole(caller, models.RoleSigner) {
		return errors.Wrapf(ErrUnauthorized, "%s is not a signer", caller)
	}
	return nil
}

func (e *Engine) requireAdmin(caller models.Identity) error {
	if !e.roles.hasRole(caller, models.RoleAdministrator) {
		return errors.Wrapf(ErrUnauthorized, "%s is not the administrator", caller)
	}
	return nil
}

// publish delivers an event to the publisher if one is installed. Events
// are notifications only: a publish failure is logged, never surfaced.
func (e *Engine) publish(topic string, event any) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(topic, event); err != nil {
		e.logger.Error().Err(err).Str("topic", topic).Msg("failed to publish event")
	}
}
