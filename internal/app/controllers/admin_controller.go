package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/app/services"
	"github.com/yigit/pointsboard/internal/middleware"
	"github.com/yigit/pointsboard/internal/pkg/helpers"
)

// AdminController handles activation codes, teacher accounts and admin settings
type AdminController struct {
	adminService services.AdminService
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService) *AdminController {
	return &AdminController{
		adminService: adminService,
	}
}

// GenerateCode issues a new activation code
// @Summary Generate an activation code
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateCodeRequest true "Validity in days"
// @Success 201 {object} dto.APIResponse{data=dto.ActivationCodeResponse} "Activation code generated"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 409 {object} dto.APIResponse "Generated code collided with an existing one"
// @Router /admin/codes [post]
func (c *AdminController) GenerateCode(ctx *gin.Context) {
	var req dto.GenerateCodeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	code, err := c.adminService.GenerateCode(ctx.Request.Context(), req.ValidDays)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromActivationCode(*code), "Activation code generated"))
}

// ListCodes lists every activation code
// @Summary List activation codes
// @Description Lists all activation codes, newest first, with the username that redeemed each used code
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ActivationCodeResponse} "Activation codes"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Router /admin/codes [get]
func (c *AdminController) ListCodes(ctx *gin.Context) {
	codes, err := c.adminService.ListCodes(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := make([]dto.ActivationCodeResponse, 0, len(codes))
	for _, code := range codes {
		resp = append(resp, dto.FromActivationCode(code))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// DeleteCode removes an activation code
// @Summary Delete an activation code
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activation code ID" format(uuid)
// @Success 200 {object} dto.APIResponse "Activation code deleted"
// @Failure 404 {object} dto.APIResponse "Activation code not found"
// @Router /admin/codes/{id} [delete]
func (c *AdminController) DeleteCode(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.adminService.DeleteCode(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Activation code deleted"))
}

// ListTeachers pages through teacher accounts
// @Summary List teachers
// @Description Lists teacher accounts with their lock status. Search matches part of the username.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Username contains"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.ProfileResponse}} "Teachers"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Router /admin/teachers [get]
func (c *AdminController) ListTeachers(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	profiles, total, err := c.adminService.ListTeachers(ctx.Request.Context(), ctx.Query("search"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	now := time.Now()
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, dto.FromProfile(&profiles[i], now))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, ""))
}

// RenewTeacher extends a teacher's authorization
// @Summary Renew a teacher
// @Description Adds days to the teacher's authorization, counted from the current expiry when it is still in the future and from now otherwise
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID" format(uuid)
// @Param request body dto.RenewRequest true "Days to add"
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse} "Teacher renewed"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 404 {object} dto.APIResponse "Teacher not found"
// @Router /admin/teachers/{id}/renew [post]
func (c *AdminController) RenewTeacher(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.RenewRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.adminService.RenewTeacher(ctx.Request.Context(), id, req.Days)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromProfile(profile, time.Now()), "Teacher renewed"))
}

// DeleteTeacher removes a teacher account
// @Summary Delete a teacher
// @Description Deletes the account together with its classes, students and groups. A redeemed code stays used.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID" format(uuid)
// @Success 200 {object} dto.APIResponse "Teacher deleted"
// @Failure 404 {object} dto.APIResponse "Teacher not found"
// @Router /admin/teachers/{id} [delete]
func (c *AdminController) DeleteTeacher(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.adminService.DeleteTeacher(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Teacher deleted"))
}

// GetSettings returns the admin username
// @Summary Get admin settings
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.AdminSettings} "Admin settings"
// @Failure 404 {object} dto.APIResponse "Admin credentials are not set"
// @Router /admin/settings [get]
func (c *AdminController) GetSettings(ctx *gin.Context) {
	settings, err := c.adminService.GetSettings(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(settings, ""))
}

// UpdateSettings replaces the admin credentials
// @Summary Update admin settings
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AdminSettingsRequest true "New credentials"
// @Success 200 {object} dto.APIResponse{data=models.AdminSettings} "Admin settings updated"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Router /admin/settings [put]
func (c *AdminController) UpdateSettings(ctx *gin.Context) {
	var req dto.AdminSettingsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	settings, err := c.adminService.UpdateSettings(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(settings, "Admin settings updated"))
}
