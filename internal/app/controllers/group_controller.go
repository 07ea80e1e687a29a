package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/app/services"
	"github.com/yigit/pointsboard/internal/domain/assignment"
	"github.com/yigit/pointsboard/internal/middleware"
)

// GroupController serves leaderboards and group assignment drafts
type GroupController struct {
	groupService services.GroupService
}

// NewGroupController creates a new GroupController
func NewGroupController(groupService services.GroupService) *GroupController {
	return &GroupController{
		groupService: groupService,
	}
}

// poolID parses a pool reference. An empty string is the unassigned pool.
func poolID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return assignment.Unassigned, nil
	}
	return uuid.Parse(raw)
}

// draftParams returns the caller and the draft path parameter
func draftParams(ctx *gin.Context) (userID, draftID uuid.UUID, ok bool) {
	if userID, ok = currentUser(ctx); !ok {
		return
	}
	draftID, ok = middleware.UUIDParam(ctx, "draftId")
	return
}

func (c *GroupController) respondDraft(ctx *gin.Context, d *assignment.Draft, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromDraft(d), ""))
}

// Leaderboard ranks a class's groups
// @Summary Class leaderboard
// @Description Ranks the class's groups by total points, highest first, and lists unassigned students
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.LeaderboardResponse} "Leaderboard"
// @Failure 400 {object} dto.APIResponse "Invalid class ID"
// @Failure 404 {object} dto.APIResponse "Class not found"
// @Router /classes/{id}/leaderboard [get]
func (c *GroupController) Leaderboard(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	classID, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	res, err := c.groupService.Leaderboard(ctx.Request.Context(), userID, classID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromRoster(classID, res), ""))
}

// OpenDraft starts editing a class's groups
// @Summary Open a group assignment draft
// @Description Loads the class's groups and students into a server-side working set. Edits apply to the draft until it is committed.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID" format(uuid)
// @Success 201 {object} dto.APIResponse{data=dto.DraftResponse} "Draft opened"
// @Failure 400 {object} dto.APIResponse "Invalid class ID"
// @Failure 404 {object} dto.APIResponse "Class not found"
// @Router /classes/{id}/drafts [post]
func (c *GroupController) OpenDraft(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	classID, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	d, err := c.groupService.OpenDraft(ctx.Request.Context(), userID, classID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromDraft(d), "Draft opened"))
}

// GetDraft returns a draft's working set
// @Summary Get a draft
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param draftId path string true "Draft ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse} "Draft"
// @Failure 404 {object} dto.APIResponse "Draft not found or expired"
// @Router /drafts/{draftId} [get]
func (c *GroupController) GetDraft(ctx *gin.Context) {
	userID, draftID, ok := draftParams(ctx)
	if !ok {
		return
	}
	d, err := c.groupService.GetDraft(userID, draftID)
	c.respondDraft(ctx, d, err)
}

// DiscardDraft drops a draft without saving
// @Summary Discard a draft
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param draftId path string true "Draft ID" format(uuid)
// @Success 200 {object} dto.APIResponse "Draft discarded"
// @Failure 404 {object} dto.APIResponse "Draft not found or expired"
// @Router /drafts/{draftId} [delete]
func (c *GroupController) DiscardDraft(ctx *gin.Context) {
	userID, draftID, ok := draftParams(ctx)
	if !ok {
		return
	}
	if err := c.groupService.DiscardDraft(userID, draftID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Draft discarded"))
}

// MoveStudent moves a student between pools
// @Summary Move a student
// @Description Moves a student from one pool to another. Omit from or to to address the unassigned pool. Moving a group's leader out clears the leader.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param draftId path string true "Draft ID" format(uuid)
// @Param request body dto.MoveStudentRequest true "Move"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse} "Draft"
// @Failure 400 {object} dto.APIResponse "Student is not in the source pool"
// @Failure 404 {object} dto.APIResponse "Draft or group not found"
// @Router /drafts/{draftId}/moves [post]
func (c *GroupController) MoveStudent(ctx *gin.Context) {
	userID, draftID, ok := draftParams(ctx)
	if !ok {
		return
	}
	var req dto.MoveStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		badRequest(ctx, "studentId", "studentId must be a valid UUID")
		return
	}
	from, err := poolID(req.From)
	if err != nil {
		badRequest(ctx, "from", "from must be a valid UUID or empty")
		return
	}
	to, err := poolID(req.To)
	if err != nil {
		badRequest(ctx, "to", "to must be a valid UUID or empty")
		return
	}

	d, err := c.groupService.MoveStudent(userID, draftID, studentID, from, to)
	c.respondDraft(ctx, d, err)
}

// SetLeader toggles a group's leader
// @Summary Toggle group leader
// @Description Makes a member the group's leader, or clears the leader when the current leader is named
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param draftId path string true "Draft ID" format(uuid)
// @Param request body dto.SetLeaderRequest true "Leader"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse} "Draft"
// @Failure 400 {object} dto.APIResponse "Student is not a member of the group"
// @Failure 404 {object} dto.APIResponse "Draft or group not found"
// @Router /drafts/{draftId}/leader [post]
func (c *GroupController) SetLeader(ctx *gin.Context) {
	userID, draftID, ok := draftParams(ctx)
	if !ok {
		return
	}
	var req dto.SetLeaderRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		badRequest(ctx, "groupId", "groupId must be a valid UUID")
		return
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		badRequest(ctx, "studentId", "studentId must be a valid UUID")
		return
	}

	d, err := c.groupService.SetLeader(userID, draftID, groupID, studentID)
	c.respondDraft(ctx, d, err)
}

// CreateGroup adds an empty group to a draft
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param draftId path string true "Draft ID" format(uuid)
// @Param request body dto.GroupNameRequest true "Group name"
// @Success 201 {object} dto.APIResponse{data=dto.CreateGroupResponse} "Group created"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 404 {object} dto.APIResponse "Draft not found"
// @Router /drafts/{draftId}/groups [post]
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	userID, draftID, ok := draftParams(ctx)
	if !ok {
		return
	}
	var req dto.GroupNameRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	groupID, d, err := c.groupService.CreateGroup(userID, draftID, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.CreateGroupResponse{
		GroupID: groupID,
		Draft:   dto.FromDraft(d),
	}, "Group created"))
}

// RenameGroup renames a group in a draft
// @Summary Rename a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param draftId path string true "Draft ID" format(uuid)
// @Param groupId path string true "Group ID" format(uuid)
// @Param request body dto.GroupNameRequest true "Group name"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse} "Draft"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 404 {object} dto.APIResponse "Draft or group not found"
// @Router /drafts/{draftId}/groups/{groupId} [patch]
func (c *GroupController) RenameGroup(ctx *gin.Context) {
	userID, draftID, ok := draftParams(ctx)
	if !ok {
		return
	}
	groupID, ok := middleware.UUIDParam(ctx, "groupId")
	if !ok {
		return
	}
	var req dto.GroupNameRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	d, err := c.groupService.RenameGroup(userID, draftID, groupID, req.Name)
	c.respondDraft(ctx, d, err)
}

// RemoveGroup removes a group from a draft
// @Summary Remove a group
// @Description Removes the group and returns its members to the unassigned pool. The group is deleted on commit.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param draftId path string true "Draft ID" format(uuid)
// @Param groupId path string true "Group ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse} "Draft"
// @Failure 404 {object} dto.APIResponse "Draft or group not found"
// @Router /drafts/{draftId}/groups/{groupId} [delete]
func (c *GroupController) RemoveGroup(ctx *gin.Context) {
	userID, draftID, ok := draftParams(ctx)
	if !ok {
		return
	}
	groupID, ok := middleware.UUIDParam(ctx, "groupId")
	if !ok {
		return
	}

	d, err := c.groupService.RemoveGroup(userID, draftID, groupID)
	c.respondDraft(ctx, d, err)
}

// Commit saves a draft
// @Summary Commit a draft
// @Description Persists the whole working set in one transaction, closes the draft and returns the class leaderboard as stored. A failed commit leaves the draft open.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param draftId path string true "Draft ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.LeaderboardResponse} "Committed"
// @Failure 404 {object} dto.APIResponse "Draft not found or expired"
// @Failure 409 {object} dto.APIResponse "A commit is already in progress"
// @Failure 500 {object} dto.APIResponse "Commit failed"
// @Router /drafts/{draftId}/commit [post]
func (c *GroupController) Commit(ctx *gin.Context) {
	userID, draftID, ok := draftParams(ctx)
	if !ok {
		return
	}

	d, err := c.groupService.GetDraft(userID, draftID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	classID := d.Engine.ClassID()

	res, err := c.groupService.Commit(ctx.Request.Context(), userID, draftID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromRoster(classID, res), "Groups saved"))
}
