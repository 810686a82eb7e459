package services

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
)

// ErrNoCandidates is returned when no idle delivery worker is within reach of a sub-order.
var ErrNoCandidates = errors.New("no delivery workers available")

// CandidateSelector is a domain service that decides which nearby workers a
// sub-order is offered to.
//
// Business rules:
//   - Only workers returned by the radius search are considered
//   - Workers holding an active assignment are excluded
//   - Every remaining worker receives the offer; there is no ranking
//
// Example usage:
//
//	selector := services.NewCandidateSelector()
//	available, err := selector.Select(nearby, busy)
//	if errors.Is(err, services.ErrNoCandidates) {
//	    // keep the status change, report that nobody was notified
//	}
type CandidateSelector struct{}

func NewCandidateSelector() CandidateSelector {
	return CandidateSelector{}
}

// Select returns nearby minus busy, in the order the radius search produced them,
// without duplicates.
func (CandidateSelector) Select(nearby []kernel.UUID, busy []kernel.UUID) ([]kernel.UUID, error) {
	excluded := make(map[kernel.UUID]struct{}, len(busy)+len(nearby))
	for _, id := range busy {
		excluded[id] = struct{}{}
	}

	available := make([]kernel.UUID, 0, len(nearby))
	for _, id := range nearby {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		excluded[id] = struct{}{}
		available = append(available, id)
	}

	if len(available) == 0 {
		return nil, ErrNoCandidates
	}
	return available, nil
}
