package commands

import (
	"context"
	"fmt"

	"fulfillment/internal/core/ports"

	"github.com/rs/zerolog"
)

type GoOfflineCommandHandler struct {
	locator ports.WorkerLocator
	logger  zerolog.Logger
}

func NewGoOfflineCommandHandler(locator ports.WorkerLocator, logger zerolog.Logger) GoOfflineCommandHandler {
	return GoOfflineCommandHandler{
		locator: locator,
		logger:  logger.With().Str("component", "go_offline").Logger(),
	}
}

// Handle drops the worker from the location index. Going offline twice is fine.
func (h GoOfflineCommandHandler) Handle(ctx context.Context, cmd GoOfflineCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.locator.Remove(ctx, cmd.WorkerID()); err != nil {
		return fmt.Errorf("unindex worker: %w", err)
	}

	h.logger.Debug().Str("worker_id", cmd.WorkerID().String()).Msg("worker went offline")
	return nil
}
