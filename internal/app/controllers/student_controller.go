package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/app/services"
	"github.com/yigit/pointsboard/internal/middleware"
)

// StudentController handles student-related operations
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// ListStudents lists the teacher's students
// @Summary List students
// @Description Lists students ordered by points, highest first. Filter by class and by a case-insensitive name fragment.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param classId query string false "Class ID" format(uuid)
// @Param search query string false "Name contains"
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentResponse} "Students retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid class ID"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Account authorization has expired"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	filter := repositories.StudentFilter{NameContains: ctx.Query("search")}
	if raw := ctx.Query("classId"); raw != "" {
		classID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(ctx, "classId", "classId must be a valid UUID")
			return
		}
		filter.ClassID = &classID
	}

	students, err := c.studentService.ListStudents(ctx.Request.Context(), userID, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromStudents(students), ""))
}

// CreateStudent adds a student to a class
// @Summary Add a student
// @Description Adds an unassigned student with zero points
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse} "Student created successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 404 {object} dto.APIResponse "Class not found"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	classID, err := uuid.Parse(req.ClassID)
	if err != nil {
		badRequest(ctx, "classId", "classId must be a valid UUID")
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), userID, classID, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromStudent(*student), "Student created successfully"))
}

// RenameStudent changes a student's name
// @Summary Rename a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" format(uuid)
// @Param request body dto.RenameStudentRequest true "New name"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student renamed"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 404 {object} dto.APIResponse "Student not found"
// @Router /students/{id} [patch]
func (c *StudentController) RenameStudent(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.RenameStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.RenameStudent(ctx.Request.Context(), userID, id, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromStudent(*student), "Student renamed"))
}

// AdjustPoints adds or subtracts points
// @Summary Adjust a student's points
// @Description Adds delta to the student's points. Use a negative delta to subtract; points may go below zero. The class scoreboard is notified.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" format(uuid)
// @Param request body dto.AdjustPointsRequest true "Point change"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Points updated"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 404 {object} dto.APIResponse "Student not found"
// @Router /students/{id}/points [patch]
func (c *StudentController) AdjustPoints(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AdjustPointsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.AdjustPoints(ctx.Request.Context(), userID, id, req.Delta)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromStudent(*student), "Points updated"))
}

// DeleteStudent removes a student
// @Summary Delete a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" format(uuid)
// @Success 200 {object} dto.APIResponse "Student deleted successfully"
// @Failure 400 {object} dto.APIResponse "Invalid student ID"
// @Failure 404 {object} dto.APIResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.studentService.DeleteStudent(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Student deleted successfully"))
}
