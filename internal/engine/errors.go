package engine

import (
	stderrors "errors"
)

// Sentinel errors for every way an operation can be rejected. Call sites
// wrap these with pkg/errors for context; match with errors.Is.
var (
	// Validation: bad input shape, rejected before any state change.
	ErrInvalidAmount     = stderrors.New("value must be greater than zero")
	ErrInvalidRecipient  = stderrors.New("recipient identity is zero")
	ErrInvalidIdentity   = stderrors.New("identity is zero")
	ErrInvalidThreshold  = stderrors.New("threshold must be between 1 and the signer count")
	ErrInsufficientFunds = stderrors.New("value exceeds the ledger balance")
	ErrSameLedger        = stderrors.New("ledger is already installed")

	// Authorization: caller lacks the required role.
	ErrUnauthorized = stderrors.New("caller lacks required role")

	// State conflict: the target is not in a state that permits the call.
	ErrTxNotFound                = stderrors.New("transaction not found")
	ErrTxAlreadyExecuted         = stderrors.New("transaction already executed")
	ErrAlreadyConfirmed          = stderrors.New("transaction already confirmed by signer")
	ErrNotConfirmed              = stderrors.New("transaction not confirmed by signer")
	ErrInsufficientConfirmations = stderrors.New("confirmation count below threshold")
	ErrAlreadySigner             = stderrors.New("identity already holds the signer role")
	ErrNotSigner                 = stderrors.New("identity does not hold the signer role")
	ErrLastSigner                = stderrors.New("cannot remove the last signer")

	// Collaborator: the external ledger refused or failed the transfer.
	// The execute that triggered it rolls back completely.
	ErrLedgerTransfer = stderrors.New("ledger transfer failed")
)

// Kind partitions the sentinel errors into the four rejection classes the
// engine distinguishes. Transport layers map kinds to status codes.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindStateConflict
	KindCollaborator
)

var errorKinds = map[error]Kind{
	ErrInvalidAmount:             KindValidation,
	ErrInvalidRecipient:          KindValidation,
	ErrInvalidIdentity:           KindValidation,
	ErrInvalidThreshold:          KindValidation,
	ErrInsufficientFunds:         KindValidation,
	ErrSameLedger:                KindValidation,
	ErrUnauthorized:              KindAuthorization,
	ErrTxNotFound:                KindStateConflict,
	ErrTxAlreadyExecuted:         KindStateConflict,
	ErrAlreadyConfirmed:          KindStateConflict,
	ErrNotConfirmed:              KindStateConflict,
	ErrInsufficientConfirmations: KindStateConflict,
	ErrAlreadySigner:             KindStateConflict,
	ErrNotSigner:                 KindStateConflict,
	ErrLastSigner:                KindStateConflict,
	ErrLedgerTransfer:            KindCollaborator,
}

// KindOf reports the rejection class of err, unwrapping as needed.
// Unknown errors classify as KindInternal.
func KindOf(err error) Kind {
	for sentinel, kind := range errorKinds {
		if stderrors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}
