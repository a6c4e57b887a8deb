package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitboard/internal/dto"
	"gitboard/internal/middleware"
	"gitboard/internal/services"
)

type LabelHandler struct {
	labelService *services.LabelService
}

func NewLabelHandler(labelService *services.LabelService) *LabelHandler {
	return &LabelHandler{
		labelService: labelService,
	}
}

// CreateLabel creates a label in a project; editors and owners only
func (h *LabelHandler) CreateLabel(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CreateLabelRequest struct {
		Name  string `json:"name" binding:"required"`
		Color string `json:"color"`
	}

	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	label, err := h.labelService.CreateLabel(projectID, req.Name, req.Color, userID)
	if err != nil {
		respondLabelError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToLabelDTO(*label))
}

// ListLabels returns a project's labels; any project member
func (h *LabelHandler) ListLabels(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	labels, err := h.labelService.ListLabels(projectID, userID)
	if err != nil {
		respondLabelError(c, err)
		return
	}

	labelDTOs := make([]dto.LabelDTO, len(labels))
	for i, label := range labels {
		labelDTOs[i] = dto.ToLabelDTO(label)
	}

	c.JSON(http.StatusOK, gin.H{
		"labels": labelDTOs,
	})
}

// DeleteLabel deletes a label and detaches it everywhere
func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	labelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.labelService.DeleteLabel(labelID, userID); err != nil {
		respondLabelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Label deleted successfully",
	})
}

// AttachLabel adds a label to a task
func (h *LabelHandler) AttachLabel(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	labelID, ok := parseIDParam(c, "label_id")
	if !ok {
		return
	}

	if err := h.labelService.AttachLabel(taskID, labelID, userID); err != nil {
		respondLabelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Label attached successfully",
	})
}

// DetachLabel removes a label from a task
func (h *LabelHandler) DetachLabel(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	labelID, ok := parseIDParam(c, "label_id")
	if !ok {
		return
	}

	if err := h.labelService.DetachLabel(taskID, labelID, userID); err != nil {
		respondLabelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Label detached successfully",
	})
}

func respondLabelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrLabelNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrLabelNameRequired),
		errors.Is(err, services.ErrLabelProjectMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrLabelNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		respondAccessError(c, err)
	}
}
