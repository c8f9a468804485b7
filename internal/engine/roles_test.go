package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

func TestRoleStoreAdmin(t *testing.T) {
	r := newRoleStore()

	require.ErrorIs(t, r.grantAdmin(""), ErrInvalidIdentity)
	require.NoError(t, r.grantAdmin(admin))
	require.True(t, r.hasRole(admin, models.RoleAdministrator))

	// re-granting to the same principal is a no-op, a different principal
	// is rejected
	require.NoError(t, r.grantAdmin(admin))
	require.ErrorIs(t, r.grantAdmin(alice), ErrUnauthorized)
	require.False(t, r.hasRole(alice, models.RoleAdministrator))
}

func TestRoleStoreSigners(t *testing.T) {
	r := newRoleStore()

	require.ErrorIs(t, r.grantSigner(""), ErrInvalidIdentity)
	require.NoError(t, r.grantSigner(s1))
	require.NoError(t, r.grantSigner(s2))
	require.NoError(t, r.grantSigner(s3))
	require.ErrorIs(t, r.grantSigner(s1), ErrAlreadySigner)

	require.True(t, r.hasRole(s1, models.RoleSigner))
	require.False(t, r.hasRole(alice, models.RoleSigner))
	require.Equal(t, 3, r.signerCount())
	require.Equal(t, []models.Identity{s1, s2, s3}, r.listSigners())

	require.ErrorIs(t, r.revokeSigner(alice), ErrNotSigner)
}

func TestRoleStoreSwapAndPopRemoval(t *testing.T) {
	r := newRoleStore()
	require.NoError(t, r.grantSigner(s1))
	require.NoError(t, r.grantSigner(s2))
	require.NoError(t, r.grantSigner(s3))

	// removing from the middle moves the last signer into the gap
	require.NoError(t, r.revokeSigner(s2))
	require.Equal(t, []models.Identity{s1, s3}, r.listSigners())
	require.False(t, r.hasRole(s2, models.RoleSigner))

	require.NoError(t, r.revokeSigner(s1))
	require.Equal(t, []models.Identity{s3}, r.listSigners())

	// the registry never empties
	require.ErrorIs(t, r.revokeSigner(s3), ErrLastSigner)
	require.True(t, r.hasRole(s3, models.RoleSigner))
}

func TestRoleStoreRegistryMatchesRoles(t *testing.T) {
	r := newRoleStore()
	ids := []models.Identity{s1, s2, s3, s4}
	for _, id := range ids {
		require.NoError(t, r.grantSigner(id))
	}
	require.NoError(t, r.revokeSigner(s2))
	require.NoError(t, r.revokeSigner(s4))

	// identity in registry iff the role is granted
	registered := make(map[models.Identity]bool)
	for _, id := range r.listSigners() {
		registered[id] = true
	}
	for _, id := range ids {
		require.Equal(t, r.hasRole(id, models.RoleSigner), registered[id], "registry out of sync for %s", id)
	}
}
