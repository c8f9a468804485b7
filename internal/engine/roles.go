package engine

import (
	"github.com/pkg/errors"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

// roleStore holds the administrator and signer role assignments plus the
// ordered signer registry. The registry exists for enumeration only; the
// role map is the source of truth for authorization checks, and the two are
// kept in sync at all times. roleStore carries no lock of its own: the
// owning engine serializes every call.
type roleStore struct {
	admin   models.Identity
	signers map[models.Identity]struct{}

	// Insertion-ordered registry. Removal is swap-and-pop, so order among
	// the remaining signers is not preserved after a removal.
	registry []models.Identity
}

func newRoleStore() *roleStore {
	return &roleStore{
		signers: make(map[models.Identity]struct{}),
	}
}

// grantAdmin assigns the administrator role. Construction-time only: a
// second grant to a different principal fails.
func (r *roleStore) grantAdmin(id models.Identity) error {
	if id.IsZero() {
		return errors.Wrap(ErrInvalidIdentity, "administrator")
	}
	if !r.admin.IsZero() && r.admin != id {
		return errors.Wrapf(ErrUnauthorized, "administrator already granted to %s", r.admin)
	}
	r.admin = id
	return nil
}

func (r *roleStore) grantSigner(id models.Identity) error {
	if id.IsZero() {
		return errors.Wrap(ErrInvalidIdentity, "signer")
	}
	if _, ok := r.signers[id]; ok {
		return errors.Wrapf(ErrAlreadySigner, "%s", id)
	}
	r.signers[id] = struct{}{}
	r.registry = append(r.registry, id)
	return nil
}

func (r *roleStore) revokeSigner(id models.Identity) error {
	if _, ok := r.signers[id]; !ok {
		return errors.Wrapf(ErrNotSigner, "%s", id)
	}
	if len(r.registry) == 1 {
		return errors.Wrapf(ErrLastSigner, "%s", id)
	}
	delete(r.signers, id)
	for i, reg := range r.registry {
		if reg == id {
			last := len(r.registry) - 1
			r.registry[i] = r.registry[last]
			r.registry = r.registry[:last]
			break
		}
	}
	return nil
}

func (r *roleStore) hasRole(id models.Identity, role models.Role) bool {
	switch role {
	case models.RoleAdministrator:
		return !id.IsZero() && id == r.admin
	case models.RoleSigner:
		_, ok := r.signers[id]
		return ok
	default:
		return false
	}
}

func (r *roleStore) signerCount() int {
	return len(r.registry)
}

// listSigners returns a copy of the registry.
func (r *roleStore) listSigners() []models.Identity {
	out := make([]models.Identity, len(r.registry))
	copy(out, r.registry)
	return out
}
