package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile defines a teacher (or admin) account based on the 'profiles' table
type Profile struct {
	ID           uuid.UUID  `json:"id" db:"id" example:"7d3f0a52-3c9b-4a57-9a8e-0e9f1d2a6b11"` // Unique identifier for the account
	FullName     string     `json:"fullName" db:"full_name" example:"Li Wei"`                  // Display name
	Username     string     `json:"username" db:"username" example:"liwei"`                    // Login handle
	PasswordHash string     `json:"-" db:"password_hash"`                                      // bcrypt hash (excluded from JSON)
	Role         RoleType   `json:"role" db:"role" example:"teacher"`                          // Account role
	CreatedAt    time.Time  `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`  // Timestamp when the account was created
	ExpireAt     *time.Time `json:"expireAt,omitempty" db:"expire_at"`                         // Nil means never activated
}
