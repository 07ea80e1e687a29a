package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/middleware"
)

// currentUser returns the authenticated user id, writing a 401 when it is missing
func currentUser(ctx *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error:     dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"),
			Timestamp: time.Now(),
		})
	}
	return id, ok
}

// badRequest writes a 400 validation error for a single field
func badRequest(ctx *gin.Context, field, details string) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+field).
		WithField(field).
		WithDetails(details)
	ctx.JSON(http.StatusBadRequest, dto.APIResponse{Error: detail, Timestamp: time.Now()})
}
