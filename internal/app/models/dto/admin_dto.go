package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models"
)

// AdminLoginRequest represents the admin credential pair
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// GenerateCodeRequest issues a new activation code
type GenerateCodeRequest struct {
	ValidDays int `json:"validDays" binding:"required,gt=0,max=3650" example:"30"`
}

// ActivationCodeResponse represents an activation code
type ActivationCodeResponse struct {
	ID             uuid.UUID  `json:"id"`
	Code           string     `json:"code" example:"APPLE-X7K2QD"`
	IsUsed         bool       `json:"isUsed"`
	ValidDays      int        `json:"validDays" example:"30"`
	UsedBy         *uuid.UUID `json:"usedBy,omitempty"`
	UsedByUsername *string    `json:"usedByUsername,omitempty" example:"liwei"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// FromActivationCode converts an activation code model
func FromActivationCode(c models.ActivationCode) ActivationCodeResponse {
	return ActivationCodeResponse{
		ID:             c.ID,
		Code:           c.Code,
		IsUsed:         c.IsUsed,
		ValidDays:      c.ValidDays,
		UsedBy:         c.UsedBy,
		UsedByUsername: c.UsedByUsername,
		CreatedAt:      c.CreatedAt,
	}
}

// RenewRequest extends a teacher's authorization by Days
type RenewRequest struct {
	Days int `json:"days" binding:"required,gt=0,max=3650" example:"30"`
}

// AdminSettingsRequest replaces the admin credentials
type AdminSettingsRequest struct {
	Username string `json:"username" binding:"required,notblank,max=100" example:"admin"`
	Password string `json:"password" binding:"required,min=6" example:"n3w-secret"`
}
