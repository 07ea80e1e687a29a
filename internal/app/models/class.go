package models

import (
	"time"

	"github.com/google/uuid"
)

// Class represents a teacher's class
type Class struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   uuid.UUID `json:"ownerId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
