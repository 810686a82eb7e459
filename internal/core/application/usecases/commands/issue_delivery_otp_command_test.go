package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIssueDeliveryOtpCommand_Success(t *testing.T) {
	workerID := kernel.NewUUID()

	cmd, err := commands.NewIssueDeliveryOtpCommand(kernel.NewUUID(), kernel.NewUUID(), workerID, testNow)

	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.True(t, cmd.Worker().Is(workerID, kernel.RoleDeliveryWorker))
}

func TestNewIssueDeliveryOtpCommand_MissingIDs(t *testing.T) {
	_, err := commands.NewIssueDeliveryOtpCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.UUID{}, testNow)
	require.Error(t, err)

	_, err = commands.NewIssueDeliveryOtpCommand(kernel.NewUUID(), kernel.UUID{}, kernel.NewUUID(), testNow)
	require.Error(t, err)
}

func TestIssueDeliveryOtpCommand_Validate_ZeroValue(t *testing.T) {
	var cmd commands.IssueDeliveryOtpCommand

	require.ErrorIs(t, cmd.Validate(), commands.ErrIssueDeliveryOtpCommandIsNotConstructed)
}
