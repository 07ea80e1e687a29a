package models

import "time"

// AdminSettingsID is the primary key of the singleton admin_settings row
const AdminSettingsID = 1

// AdminSettings holds the administrator login handle and password hash
type AdminSettings struct {
	ID           int       `json:"-" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
