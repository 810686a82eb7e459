package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want kernel.Role
	}{
		{in: "customer", want: kernel.RoleCustomer},
		{in: "owner", want: kernel.RoleOwner},
		{in: " Delivery_Worker ", want: kernel.RoleDeliveryWorker},
		{in: "system", want: kernel.RoleSystem},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			role, err := kernel.ParseRole(tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}

	t.Run("unknown role", func(t *testing.T) {
		role, err := kernel.ParseRole("admin")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, kernel.RoleUnknown, role)
	})

	t.Run("unknown is not parseable", func(t *testing.T) {
		_, err := kernel.ParseRole("unknown")

		require.Error(t, err)
	})
}

func TestNewActor(t *testing.T) {
	t.Run("valid actor", func(t *testing.T) {
		id := kernel.NewUUID()

		actor, err := kernel.NewActor(id, kernel.RoleOwner)

		require.NoError(t, err)
		require.NoError(t, actor.Validate())
		assert.True(t, actor.ID().IsEqual(id))
		assert.Equal(t, kernel.RoleOwner, actor.Role())
		assert.True(t, actor.Is(id, kernel.RoleOwner))
		assert.False(t, actor.Is(id, kernel.RoleDeliveryWorker))
		assert.False(t, actor.Is(kernel.NewUUID(), kernel.RoleOwner))
	})

	t.Run("invalid id and role are joined", func(t *testing.T) {
		_, err := kernel.NewActor(kernel.UUID{}, kernel.RoleUnknown)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var actor kernel.Actor

		assert.Equal(t, kernel.ErrActorIsNotConstructed, actor.Validate())
	})
}

func TestSystemActor(t *testing.T) {
	actor := kernel.SystemActor()

	require.NoError(t, actor.Validate())
	require.NoError(t, actor.ID().Validate())
	assert.Equal(t, kernel.RoleSystem, actor.Role())
	assert.Equal(t, "system", actor.Role().String())
}
