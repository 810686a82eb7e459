// Package assignmentrepo persists assignment records and their candidate lists.
//
// Two partial unique indexes back the broker's concurrency guarantees: a sub-order
// has at most one non-completed record, and a worker holds at most one assigned record.
package assignmentrepo

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentDTO represents the database structure for assignment records.
type AssignmentDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ShopID     uuid.UUID  `gorm:"type:uuid;not null"`
	SubOrderID uuid.UUID  `gorm:"type:uuid;not null;index:idx_assignments_active_sub_order,unique,where:status <> 3"`
	AssignedTo *uuid.UUID `gorm:"type:uuid;index:idx_assignments_assigned_worker,unique,where:status = 2"`
	Status     int        `gorm:"not null;index"`
	AcceptedAt *time.Time
	CreatedAt  time.Time      `gorm:"not null;index"`
	Candidates []CandidateDTO `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE"`
}

func (AssignmentDTO) TableName() string {
	return "assignments"
}

// CandidateDTO is one entry of an assignment's broadcastTo set.
type CandidateDTO struct {
	AssignmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkerID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position     int       `gorm:"not null"`
}

func (CandidateDTO) TableName() string {
	return "assignment_candidates"
}
