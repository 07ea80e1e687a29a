package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models"
)

// ClassRequest carries the editable fields of a class
type ClassRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255" example:"Grade 3 Class A"`
}

// ClassResponse represents a class
type ClassResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" example:"Grade 3 Class A"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromClass converts a class model
func FromClass(c models.Class) ClassResponse {
	return ClassResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

// FromClasses converts a list of class models
func FromClasses(classes []models.Class) []ClassResponse {
	out := make([]ClassResponse, len(classes))
	for i, c := range classes {
		out[i] = FromClass(c)
	}
	return out
}
