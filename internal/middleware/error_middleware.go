package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
	"github.com/yigit/pointsboard/internal/pkg/logger"
)

// errorMapping ties a sentinel error to its HTTP status and error code
type errorMapping struct {
	err     error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order, so specific errors come before generic ones.
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrStudentNotInPool, http.StatusBadRequest, dto.ErrorCodeAssignmentInvalid, "Student is not in the source pool"},
	{apperrors.ErrNotGroupMember, http.StatusBadRequest, dto.ErrorCodeAssignmentInvalid, "Student is not a member of the group"},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},

	{apperrors.ErrAccountExpired, http.StatusForbidden, dto.ErrorCodeAccountExpired, "Account authorization has expired"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	{apperrors.ErrCodeNotFound, http.StatusNotFound, dto.ErrorCodeActivationNotFound, "Activation code not found"},
	{apperrors.ErrCodeAlreadyUsed, http.StatusConflict, dto.ErrorCodeActivationUsed, "Activation code has already been used"},

	{apperrors.ErrProfileNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Teacher not found"},
	{apperrors.ErrClassNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Class not found"},
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
	{apperrors.ErrGroupNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Group not found"},
	{apperrors.ErrDraftNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Draft not found"},
	{apperrors.ErrAdminNotSet, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Admin credentials are not configured"},

	{apperrors.ErrUsernameExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Username already exists"},
	{apperrors.ErrClassNotEmpty, http.StatusConflict, dto.ErrorCodeConflict, "Class still has students"},
	{apperrors.ErrCommitInProgress, http.StatusConflict, dto.ErrorCodeCommitInProgress, "A commit is already in progress"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)
		if msg := err.Error(); msg != m.err.Error() {
			detail = detail.WithDetails(msg)
		}
		c.JSON(m.status, dto.APIResponse{Error: detail, Timestamp: timeNow()})
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, dto.APIResponse{
		Error:     dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Internal server error"),
		Timestamp: timeNow(),
	})
}

// abortWithError writes an error envelope and stops the handler chain
func abortWithError(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.APIResponse{Error: detail, Timestamp: timeNow()})
}

// abortWithAPIError maps err like HandleAPIError and stops the handler chain
func abortWithAPIError(c *gin.Context, err error) {
	HandleAPIError(c, err)
	c.Abort()
}
