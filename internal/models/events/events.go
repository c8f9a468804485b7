// Package events defines the domain event payloads the engine publishes.
// Events are notifications for external observers (indexing, alerting);
// no component re-reads them to drive its own state.
package events

import (
	"time"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

// Topics the engine publishes to.
const (
	TopicTransactions = "authorization.transactions"
	TopicSigners      = "authorization.signers"
)

type TransactionProposed struct {
	EventID    string          `json:"event_id"`
	Proposer   models.Identity `json:"proposer"`
	Index      uint64          `json:"index"`
	Recipient  models.Identity `json:"recipient"`
	Value      uint64          `json:"value"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type TransactionConfirmed struct {
	EventID    string          `json:"event_id"`
	Signer     models.Identity `json:"signer"`
	Index      uint64          `json:"index"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type ConfirmationRevoked struct {
	EventID    string          `json:"event_id"`
	Signer     models.Identity `json:"signer"`
	Index      uint64          `json:"index"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type TransactionExecuted struct {
	EventID    string          `json:"event_id"`
	Executor   models.Identity `json:"executor"`
	Index      uint64          `json:"index"`
	Recipient  models.Identity `json:"recipient"`
	Value      uint64          `json:"value"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type SignerAdded struct {
	EventID    string          `json:"event_id"`
	Identity   models.Identity `json:"identity"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type SignerRemoved struct {
	EventID    string          `json:"event_id"`
	Identity   models.Identity `json:"identity"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type ThresholdChanged struct {
	EventID    string    `json:"event_id"`
	Threshold  int       `json:"threshold"`
	OccurredAt time.Time `json:"occurred_at"`
}

type LedgerUpdated struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
