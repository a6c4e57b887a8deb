package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gitboard/internal/dto"
	"gitboard/internal/middleware"
	"gitboard/internal/models"
	"gitboard/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	auditService   *services.AuditService
}

func NewProjectHandler(projectService *services.ProjectService, auditService *services.AuditService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		auditService:   auditService,
	}
}

// CreateProject creates a new project with the caller as owner
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	type CreateProjectRequest struct {
		Name        string     `json:"name" binding:"required"`
		Description string     `json:"description"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
		Color       string     `json:"color"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Color:       req.Color,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	h.auditService.Record(userID, "project.create", "project", project.ID, middleware.GetRequestID(c), project.Name)

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns all projects the user is a member of
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	memberships, err := h.projectService.ListProjectsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	projects := make([]dto.ProjectWithRoleDTO, len(memberships))
	for i, m := range memberships {
		projects[i] = dto.ToProjectWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
	})
}

// GetProject returns project details with members
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	project, members, role, err := h.projectService.GetProjectWithMembers(projectID, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project, members, role))
}

// UpdateProject updates project fields; owner only
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name        *string    `json:"name"`
		Description *string    `json:"description"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
		Color       *string    `json:"color"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	project, err := h.projectService.UpdateProject(projectID, userID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Color:       req.Color,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// SetProjectStatus changes the project lifecycle state; owner only
func (h *ProjectHandler) SetProjectStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type StatusRequest struct {
		Status models.ProjectStatus `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	project, err := h.projectService.SetProjectStatus(projectID, userID, req.Status)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	h.auditService.Record(userID, "project.status", "project", project.ID, middleware.GetRequestID(c), string(req.Status))

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project and everything under it; owner only
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(projectID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	h.auditService.Record(userID, "project.delete", "project", projectID, middleware.GetRequestID(c), "")

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// AddMember adds a user to the project; owner only
func (h *ProjectHandler) AddMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uint64             `json:"user_id" binding:"required"`
		Role   models.ProjectRole `json:"role" binding:"required"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	member, err := h.projectService.AddMember(projectID, userID, req.UserID, req.Role)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	h.auditService.Record(userID, "project.member.add", "project", projectID, middleware.GetRequestID(c), strconv.FormatUint(req.UserID, 10))

	c.JSON(http.StatusCreated, dto.ToProjectMemberDTO(*member))
}

// ChangeMemberRole updates a member's role; owner only
func (h *ProjectHandler) ChangeMemberRole(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	type RoleRequest struct {
		Role models.ProjectRole `json:"role" binding:"required"`
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.projectService.ChangeMemberRole(projectID, userID, targetID, req.Role); err != nil {
		respondProjectError(c, err)
		return
	}

	h.auditService.Record(userID, "project.member.role", "project", projectID, middleware.GetRequestID(c), string(req.Role))

	c.JSON(http.StatusOK, gin.H{
		"message": "Member role updated successfully",
	})
}

// TransferOwnership hands the project to another member; owner only
func (h *ProjectHandler) TransferOwnership(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type TransferRequest struct {
		NewOwnerID uint64 `json:"new_owner_id" binding:"required"`
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.projectService.TransferOwnership(projectID, userID, req.NewOwnerID); err != nil {
		respondProjectError(c, err)
		return
	}

	h.auditService.Record(userID, "project.transfer", "project", projectID, middleware.GetRequestID(c), strconv.FormatUint(req.NewOwnerID, 10))

	c.JSON(http.StatusOK, gin.H{
		"message": "Ownership transferred successfully",
	})
}

// RemoveMember removes a member from the project; owner only
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(projectID, userID, targetID); err != nil {
		respondProjectError(c, err)
		return
	}

	h.auditService.Record(userID, "project.member.remove", "project", projectID, middleware.GetRequestID(c), strconv.FormatUint(targetID, 10))

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrProjectMemberNotFound),
		errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidProjectName),
		errors.Is(err, services.ErrInvalidProjectStatus),
		errors.Is(err, services.ErrInvalidProjectRole),
		errors.Is(err, services.ErrOwnerRoleReserved),
		errors.Is(err, services.ErrCannotRemoveOwner),
		errors.Is(err, services.ErrCannotRemoveYourself):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyProjectMember):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		respondAccessError(c, err)
	}
}
