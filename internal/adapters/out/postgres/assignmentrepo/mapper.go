package assignmentrepo

import (
	"errors"
	"sort"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

func fromDomain(aggregate *assignment.Assignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:         aggregate.ID().Bytes(),
		OrderID:    aggregate.OrderID().Bytes(),
		ShopID:     aggregate.ShopID().Bytes(),
		SubOrderID: aggregate.SubOrderID().Bytes(),
		Status:     int(aggregate.Status()),
		AcceptedAt: aggregate.AcceptedAt(),
		CreatedAt:  aggregate.CreatedAt(),
	}
	if assignedTo := aggregate.AssignedTo(); assignedTo != nil {
		raw := assignedTo.Bytes()
		dto.AssignedTo = &raw
	}

	for i, workerID := range aggregate.BroadcastTo() {
		dto.Candidates = append(dto.Candidates, CandidateDTO{
			AssignmentID: dto.ID,
			WorkerID:     workerID.Bytes(),
			Position:     i,
		})
	}

	return dto
}

func toDomain(dto AssignmentDTO) (*assignment.Assignment, error) {
	id, idErr := kernel.UUIDFromBytes(dto.ID[:])
	orderID, orderErr := kernel.UUIDFromBytes(dto.OrderID[:])
	shopID, shopErr := kernel.UUIDFromBytes(dto.ShopID[:])
	subOrderID, subOrderErr := kernel.UUIDFromBytes(dto.SubOrderID[:])
	if err := errors.Join(idErr, orderErr, shopErr, subOrderErr); err != nil {
		return nil, err
	}

	sort.SliceStable(dto.Candidates, func(i, j int) bool {
		return dto.Candidates[i].Position < dto.Candidates[j].Position
	})
	broadcastTo := make([]kernel.UUID, 0, len(dto.Candidates))
	for _, c := range dto.Candidates {
		workerID, err := kernel.UUIDFromBytes(c.WorkerID[:])
		if err != nil {
			return nil, err
		}
		broadcastTo = append(broadcastTo, workerID)
	}

	var assignedTo *kernel.UUID
	if dto.AssignedTo != nil {
		workerID, err := kernel.UUIDFromBytes(dto.AssignedTo[:])
		if err != nil {
			return nil, err
		}
		assignedTo = &workerID
	}

	return assignment.RestoreAssignment(
		id, orderID, shopID, subOrderID,
		broadcastTo,
		assignedTo,
		assignment.Status(dto.Status),
		dto.AcceptedAt,
		dto.CreatedAt,
	)
}

func toRaw(ids []kernel.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Bytes())
	}
	return out
}
