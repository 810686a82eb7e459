package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerifyDeliveryOtpCommand_TrimsCode(t *testing.T) {
	cmd, err := commands.NewVerifyDeliveryOtpCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), " 4821 ", testNow)

	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, "4821", cmd.Code())
}

func TestNewVerifyDeliveryOtpCommand_EmptyCode(t *testing.T) {
	_, err := commands.NewVerifyDeliveryOtpCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), "  ", testNow)

	require.Error(t, err)
}

func TestVerifyDeliveryOtpCommand_Validate_ZeroValue(t *testing.T) {
	var cmd commands.VerifyDeliveryOtpCommand

	require.ErrorIs(t, cmd.Validate(), commands.ErrVerifyDeliveryOtpCommandIsNotConstructed)
}
