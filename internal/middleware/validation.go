package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/pkg/validation"
)

var registerOnce sync.Once

// RegisterValidators installs the custom rules on gin's validator engine. It
// must run before the first request is bound.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			err = validation.Register(v)
		}
	})
	return err
}

// BindJSON binds and validates the request body into obj. On failure it writes
// a 400 response and returns false.
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.APIResponse{
			Error:     dto.HandleValidationError(err),
			Timestamp: timeNow(),
		})
		return false
	}
	return true
}

// UUIDParam parses the named path parameter. On failure it writes a 400
// response and returns false.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a valid UUID")
		c.JSON(http.StatusBadRequest, dto.APIResponse{Error: detail, Timestamp: timeNow()})
		return uuid.Nil, false
	}
	return id, true
}
