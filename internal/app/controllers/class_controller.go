package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/app/services"
	"github.com/yigit/pointsboard/internal/middleware"
)

// ClassController handles class-related operations
type ClassController struct {
	classService services.ClassService
}

// NewClassController creates a new ClassController
func NewClassController(classService services.ClassService) *ClassController {
	return &ClassController{
		classService: classService,
	}
}

// CreateClass handles class creation
// @Summary Create a class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ClassRequest true "Class information"
// @Success 201 {object} dto.APIResponse{data=dto.ClassResponse} "Class created successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Account authorization has expired"
// @Router /classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req dto.ClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	class, err := c.classService.CreateClass(ctx.Request.Context(), userID, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromClass(*class), "Class created successfully"))
}

// ListClasses lists the teacher's classes
// @Summary List classes
// @Description Lists the signed-in teacher's classes, newest first
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ClassResponse} "Classes retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Account authorization has expired"
// @Router /classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	classes, err := c.classService.ListClasses(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromClasses(classes), ""))
}

// GetClass retrieves a class by ID
// @Summary Get a class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.ClassResponse} "Class retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid class ID"
// @Failure 404 {object} dto.APIResponse "Class not found"
// @Router /classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	class, err := c.classService.GetClass(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromClass(*class), ""))
}

// UpdateClass renames a class
// @Summary Rename a class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID" format(uuid)
// @Param request body dto.ClassRequest true "Class information"
// @Success 200 {object} dto.APIResponse{data=dto.ClassResponse} "Class updated successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 404 {object} dto.APIResponse "Class not found"
// @Router /classes/{id} [put]
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	class, err := c.classService.UpdateClass(ctx.Request.Context(), userID, id, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromClass(*class), "Class updated successfully"))
}

// DeleteClass deletes an empty class
// @Summary Delete a class
// @Description Deletes a class. Classes that still have students are refused with 409.
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID" format(uuid)
// @Success 200 {object} dto.APIResponse "Class deleted successfully"
// @Failure 400 {object} dto.APIResponse "Invalid class ID"
// @Failure 404 {object} dto.APIResponse "Class not found"
// @Failure 409 {object} dto.APIResponse "Class still has students"
// @Router /classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.classService.DeleteClass(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Class deleted successfully"))
}
