package models

import "time"

// Identity names a principal: a signer, the administrator, or a transfer
// recipient. The zero value is never a valid identity.
type Identity string

// IsZero reports whether the identity is the invalid zero value.
func (i Identity) IsZero() bool {
	return i == ""
}

// Role is a capability a principal may hold. A principal may hold both
// roles at once.
type Role uint8

const (
	// RoleAdministrator manages the signer set, the confirmation threshold
	// and the ledger reference. Granted once at construction, never revoked.
	RoleAdministrator Role = iota + 1
	// RoleSigner may propose, confirm, revoke and execute transactions.
	RoleSigner
)

func (r Role) String() string {
	switch r {
	case RoleAdministrator:
		return "administrator"
	case RoleSigner:
		return "signer"
	default:
		return "unknown"
	}
}

// Transaction is a proposed value transfer awaiting signer confirmations.
// Index is assigned at creation, strictly increasing and never reused.
// Once Executed flips to true the transaction is terminal: recipient, value
// and the recorded confirmations are frozen as an audit trail.
type Transaction struct {
	Index         uint64    `json:"index"`
	Recipient     Identity  `json:"recipient"`
	Value         uint64    `json:"value"` // smallest indivisible unit of the asset
	Executed      bool      `json:"executed"`
	Confirmations int       `json:"confirmations"`
	ProposedBy    Identity  `json:"proposed_by"`
	CreatedAt     time.Time `json:"created_at"`
}
