package interfaces

import (
	"context"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

// Ledger is the external custody collaborator the engine releases value
// through. Balance is a point-in-time query. Transfer must be effectively
// atomic from the engine's perspective: either the recipient is credited
// with exactly amount and the call returns nil, or nothing changed and it
// returns an error. Partial transfers are not a valid outcome.
type Ledger interface {
	Balance(ctx context.Context) (uint64, error)
	Transfer(ctx context.Context, recipient models.Identity, amount uint64) error
}
