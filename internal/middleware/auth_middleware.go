package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/domain/access"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
	"github.com/yigit/pointsboard/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextRole     = "role"
)

// AccessChecker reports whether a teacher's authorization is still valid
type AccessChecker interface {
	CheckAccess(ctx context.Context, userID uuid.UUID) (access.Status, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	checker    AccessChecker
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, checker AccessChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		checker:    checker,
	}
}

// tokenFromRequest reads the bearer token from the Authorization header. Browsers
// cannot set headers on a websocket handshake, so the token query parameter is
// accepted as well.
func tokenFromRequest(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		header = c.Query("token")
	}
	if header == "" {
		return "", auth.ErrInvalidFormat
	}

	header = strings.Trim(header, "\"'")
	// Raw JWT without the Bearer prefix (Swagger UI convenience)
	if strings.Count(header, ".") == 2 && !strings.HasPrefix(header, "Bearer ") {
		return header, nil
	}
	return auth.ExtractBearerToken(header)
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing or malformed")
			abortWithError(c, http.StatusUnauthorized, detail)
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortWithAPIError(c, apperrors.ErrTokenExpired)
				return
			}
			abortWithAPIError(c, apperrors.ErrTokenInvalid)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RoleRequired middleware to check if user has required role
func (m *AuthMiddleware) RoleRequired(requiredRole models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("User role not found")
			abortWithError(c, http.StatusUnauthorized, detail)
			return
		}

		if r, ok := role.(models.RoleType); !ok || r != requiredRole {
			abortWithAPIError(c, fmt.Errorf("%w: %s role required", apperrors.ErrPermissionDenied, requiredRole))
			return
		}

		c.Next()
	}
}

// ActiveTeacherRequired rejects teachers whose authorization has lapsed. It
// must run after JWTAuth and RoleRequired(models.RoleTeacher).
func (m *AuthMiddleware) ActiveTeacherRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("User information not found")
			abortWithError(c, http.StatusUnauthorized, detail)
			return
		}

		status, err := m.checker.CheckAccess(c.Request.Context(), userID)
		if err != nil {
			abortWithAPIError(c, err)
			return
		}
		if status != access.StatusActive {
			abortWithAPIError(c, fmt.Errorf("%w: ask the administrator to renew your account", apperrors.ErrAccountExpired))
			return
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user's id set by JWTAuth
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
