package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/app/services"
	"github.com/yigit/pointsboard/internal/middleware"
)

// AuthController handles authentication related requests
type AuthController struct {
	authService services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// VerifyCode checks an activation code before registration
// @Summary Verify an activation code
// @Description Checks that an activation code exists and has not been redeemed
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyCodeRequest true "Activation code"
// @Success 200 {object} dto.APIResponse{data=dto.VerifyCodeResponse} "Code can be redeemed"
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Failure 404 {object} dto.APIResponse "Activation code not found"
// @Failure 409 {object} dto.APIResponse "Activation code has already been used"
// @Router /auth/register/verify-code [post]
func (c *AuthController) VerifyCode(ctx *gin.Context) {
	var req dto.VerifyCodeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	code, err := c.authService.VerifyCode(ctx.Request.Context(), req.Code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.VerifyCodeResponse{
		Code:      code.Code,
		ValidDays: code.ValidDays,
	}, ""))
}

// Register handles teacher registration
// @Summary Register a teacher
// @Description Creates a teacher account and redeems the activation code. The account is authorized for the code's number of days.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration information"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse} "Registration successful"
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Failure 404 {object} dto.APIResponse "Activation code not found"
// @Failure 409 {object} dto.APIResponse "Activation code already used or username taken"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Registration successful"))
}

// Login handles teacher login
// @Summary Teacher login
// @Description Authenticates a teacher. Expired teachers still receive a token; the profile status is "expired".
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// AdminLogin handles administrator login
// @Summary Admin login
// @Description Authenticates the administrator against the stored admin credentials
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Router /auth/admin/login [post]
func (c *AuthController) AdminLogin(ctx *gin.Context) {
	var req dto.AdminLoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.AdminLogin(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Me returns the signed-in teacher
// @Summary Current teacher
// @Description Returns the signed-in teacher with lock status and the activation code they redeemed. Works for expired accounts.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "Current teacher"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Teacher not found"
// @Router /me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	profile, err := c.authService.Me(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile, ""))
}
