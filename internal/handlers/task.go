package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gitboard/internal/dto"
	"gitboard/internal/middleware"
	"gitboard/internal/models"
	"gitboard/internal/services"
	"gitboard/internal/utils"
)

type TaskHandler struct {
	taskService    *services.TaskService
	commentService *services.CommentService
	auditService   *services.AuditService
}

func NewTaskHandler(taskService *services.TaskService, commentService *services.CommentService, auditService *services.AuditService) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		commentService: commentService,
		auditService:   auditService,
	}
}

// CreateTask creates a task on a board; editors and owners only
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		Status      models.TaskStatus   `json:"status"`
		Priority    models.TaskPriority `json:"priority"`
		AssignedTo  *uint64             `json:"assigned_to"`
		DueDate     *time.Time          `json:"due_date"`
		OrderIndex  int                 `json:"order_index"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		BoardID:     boardID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		OrderIndex:  req.OrderIndex,
		CreatorID:   userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	h.auditService.Record(userID, "task.create", "task", task.ID, middleware.GetRequestID(c), task.Title)

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a task with its relations; any project member
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask updates task fields; editors and owners only
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Parse raw JSON to tell an absent field from an explicit null
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var input services.UpdateTaskInput
	if title, ok := rawReq["title"].(string); ok {
		input.Title = &title
	}
	if description, ok := rawReq["description"].(string); ok {
		input.Description = &description
	}
	if priority, ok := rawReq["priority"].(string); ok {
		p := models.TaskPriority(priority)
		input.Priority = &p
	}
	if raw, ok := rawReq["assigned_to"]; ok {
		if raw == nil {
			input.ClearAssignee = true
		} else if id, ok := raw.(float64); ok && id >= 0 {
			uid := uint64(id)
			input.AssignedTo = &uid
		}
	}
	if raw, ok := rawReq["due_date"]; ok {
		if raw == nil {
			input.ClearDueDate = true
		} else if s, ok := raw.(string); ok {
			parsed, err := time.Parse(time.RFC3339, s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date"})
				return
			}
			input.DueDate = &parsed
		}
	}

	task, err := h.taskService.UpdateTask(taskID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// MoveTask moves a task to another Kanban column
func (h *TaskHandler) MoveTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type MoveRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.taskService.Move(taskID, req.Status, userID); err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		respondTaskError(c, err)
		return
	}

	h.auditService.Record(userID, "task.move", "task", taskID, middleware.GetRequestID(c), string(req.Status))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReorderTask places a task at an explicit position, optionally moving it to
// another column in the same call
func (h *TaskHandler) ReorderTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type ReorderRequest struct {
		OrderIndex int               `json:"order_index"`
		Status     models.TaskStatus `json:"status"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.taskService.Reorder(taskID, req.OrderIndex, req.Status, userID); err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteTask deletes a task; editors and owners only
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	h.auditService.Record(userID, "task.delete", "task", taskID, middleware.GetRequestID(c), "")

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AddComment appends a comment to the task's thread; any project member
func (h *TaskHandler) AddComment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CommentRequest struct {
		Body string `json:"body" binding:"required"`
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := h.commentService.AddComment(taskID, userID, req.Body)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

// ListComments returns the task's comment thread, oldest first
func (h *TaskHandler) ListComments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.ListComments(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	commentDTOs := make([]dto.CommentDTO, len(comments))
	for i, comment := range comments {
		commentDTOs[i] = dto.ToCommentDTO(comment)
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": commentDTOs,
	})
}

// GetHistory returns the task's audit trail, newest first, paginated
func (h *TaskHandler) GetHistory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Membership check rides on the task fetch
	if _, err := h.taskService.GetTask(taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)

	entries, total, err := h.auditService.History("task", taskID, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrBoardNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrCommentBodyRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTaskPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		respondAccessError(c, err)
	}
}
