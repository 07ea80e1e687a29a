package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivationCode is a single-use token granting a validity period to a teacher account.
type ActivationCode struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Code      string     `json:"code" db:"code" example:"APPLE-X7K2QD"`
	IsUsed    bool       `json:"isUsed" db:"is_used"`
	ValidDays int        `json:"validDays" db:"valid_days" example:"30"`
	UsedBy    *uuid.UUID `json:"usedBy,omitempty" db:"used_by"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`

	// Relation, no db tag
	UsedByUsername *string `json:"usedByUsername,omitempty"`
}
