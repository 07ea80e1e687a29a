package models

import (
	"time"

	"github.com/google/uuid"
)

// Student defines a student row. GroupID is a weak back-reference: a nil or
// dangling value means the student is unassigned.
type Student struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name" example:"Zhang San"`
	Points    int        `json:"points" db:"points" example:"12"` // May be zero or negative
	OwnerID   uuid.UUID  `json:"ownerId" db:"user_id"`
	ClassID   uuid.UUID  `json:"classId" db:"class_id"`
	GroupID   *uuid.UUID `json:"groupId,omitempty" db:"group_id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// InGroup reports whether the student references the given group.
func (s Student) InGroup(groupID uuid.UUID) bool {
	return s.GroupID != nil && *s.GroupID == groupID
}
