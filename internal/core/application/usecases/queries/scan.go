// Package queries contains read operations that bypass the aggregates and read
// the tables directly, in the CQRS style.
package queries

import (
	"database/sql"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

func toKernelUUID(id uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func toKernelUUIDPtr(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil //nolint:nilnil // column is nullable
	}
	converted, err := toKernelUUID(*id)
	if err != nil {
		return nil, err
	}
	return &converted, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
