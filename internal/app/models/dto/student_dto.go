package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models"
)

// CreateStudentRequest adds a student with zero points to a class
type CreateStudentRequest struct {
	Name    string `json:"name" binding:"required,notblank,max=255" example:"Mia"`
	ClassID string `json:"classId" binding:"required,uuid" example:"2f1c0d7e-8a55-4c1b-b0e4-7b0d5f0c9a10"`
}

// AdjustPointsRequest adds delta (negative to subtract) to a student's points
type AdjustPointsRequest struct {
	Delta int `json:"delta" binding:"required,min=-100000,max=100000" example:"5"`
}

// RenameStudentRequest changes a student's name
type RenameStudentRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255" example:"Mia Chen"`
}

// StudentResponse represents a student
type StudentResponse struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name" example:"Mia"`
	Points  int        `json:"points" example:"12"`
	ClassID uuid.UUID  `json:"classId"`
	GroupID *uuid.UUID `json:"groupId,omitempty"`
}

// FromStudent converts a student model
func FromStudent(s models.Student) StudentResponse {
	return StudentResponse{ID: s.ID, Name: s.Name, Points: s.Points, ClassID: s.ClassID, GroupID: s.GroupID}
}

// FromStudents converts a list of student models
func FromStudents(students []models.Student) []StudentResponse {
	out := make([]StudentResponse, len(students))
	for i, s := range students {
		out[i] = FromStudent(s)
	}
	return out
}
