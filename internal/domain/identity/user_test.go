package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawnest/service-marketplace/internal/auth"
	"github.com/pawnest/service-marketplace/internal/domain"
)

func TestNewUserNormalizesEmail(t *testing.T) {
	u, err := NewUser("Sam", "Sam@Example.COM", "hash", auth.RoleOwner, "", "")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", u.Email())
	assert.True(t, u.IsActive())
	assert.True(t, u.IsOwner())
}

func TestNewUserValidation(t *testing.T) {
	_, err := NewUser("", "sam@example.com", "hash", auth.RoleOwner, "", "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewUser("Sam", "", "hash", auth.RoleOwner, "", "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewUser("Sam", "sam@example.com", "hash", auth.Role("admin"), "", "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestDeactivateReactivate(t *testing.T) {
	u, err := NewUser("Sam", "sam@example.com", "hash", auth.RoleSitter, "", "")
	require.NoError(t, err)

	u.Deactivate()
	assert.False(t, u.IsActive())
	version := u.Version()

	// Repeating is a no-op.
	u.Deactivate()
	assert.Equal(t, version, u.Version())

	u.Reactivate()
	assert.True(t, u.IsActive())
}

func TestUpdateProfileSkipsEmptyName(t *testing.T) {
	u, err := NewUser("Sam", "sam@example.com", "hash", auth.RoleOwner, "", "")
	require.NoError(t, err)

	u.UpdateProfile("", "555-0100", "likes dogs")
	assert.Equal(t, "Sam", u.Name())
	assert.Equal(t, "555-0100", u.Phone())
	assert.Equal(t, "likes dogs", u.Bio())
}
