package models

import "github.com/google/uuid"

// Group represents a student group inside a class
type Group struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	Name     string     `json:"name" db:"name" example:"Alpha"`
	OwnerID  uuid.UUID  `json:"ownerId" db:"user_id"`
	ClassID  uuid.UUID  `json:"classId" db:"class_id"`
	LeaderID *uuid.UUID `json:"leaderId,omitempty" db:"leader_id"` // Must be one of the group's members
}
