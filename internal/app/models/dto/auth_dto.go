package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/domain/access"
)

// VerifyCodeRequest checks an activation code before the registration form is shown
type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required,activationcode" example:"APPLE-X7K2QD"`
}

// VerifyCodeResponse describes a redeemable code
type VerifyCodeResponse struct {
	Code      string `json:"code" example:"APPLE-X7K2QD"`
	ValidDays int    `json:"validDays" example:"30"`
}

// RegisterRequest represents a teacher registration redeeming an activation code
type RegisterRequest struct {
	Code     string `json:"code" binding:"required,activationcode" example:"APPLE-X7K2QD"`
	FullName string `json:"fullName" binding:"required,notblank,max=255" example:"Li Wei"`
	Username string `json:"username" binding:"required,notblank,min=3,max=100" example:"liwei"`
	Password string `json:"password" binding:"required,min=6" example:"secret1"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"liwei"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"86400"`
}

// ProfileResponse represents a teacher account with its lock status
type ProfileResponse struct {
	ID             uuid.UUID       `json:"id"`
	FullName       string          `json:"fullName" example:"Li Wei"`
	Username       string          `json:"username" example:"liwei"`
	Role           models.RoleType `json:"role" example:"teacher"`
	CreatedAt      time.Time       `json:"createdAt"`
	ExpireAt       *time.Time      `json:"expireAt,omitempty"`
	Status         access.Status   `json:"status" example:"active" enums:"active,expired"`
	ActivationCode string          `json:"activationCode,omitempty" example:"APPLE-X7K2QD"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token   TokenResponse    `json:"token"`
	Profile *ProfileResponse `json:"profile,omitempty"`
}

// FromProfile converts a profile, evaluating its lock status at now
func FromProfile(p *models.Profile, now time.Time) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Username:  p.Username,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		ExpireAt:  p.ExpireAt,
		Status:    access.CheckExpiry(p.ExpireAt, now),
	}
}
