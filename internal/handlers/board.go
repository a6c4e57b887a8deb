package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitboard/internal/dto"
	"gitboard/internal/middleware"
	"gitboard/internal/models"
	"gitboard/internal/services"
)

type BoardHandler struct {
	boardService *services.BoardService
	auditService *services.AuditService
}

func NewBoardHandler(boardService *services.BoardService, auditService *services.AuditService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		auditService: auditService,
	}
}

// ListBoards returns all boards of a project with per-column task counts
func (h *BoardHandler) ListBoards(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summaries, err := h.boardService.ListBoards(projectID, userID)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	boards := make([]dto.BoardSummaryDTO, len(summaries))
	for i, s := range summaries {
		boards[i] = dto.BoardSummaryDTO{
			BoardDTO:   dto.ToBoardDTO(s.Board),
			TaskCounts: s.TaskCounts,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"boards": boards,
	})
}

// CreateBoard creates a board in a project; editors and owners only
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CreateBoardRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	board, err := h.boardService.CreateBoard(services.CreateBoardInput{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
	}, userID)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	h.auditService.Record(userID, "board.create", "board", board.ID, middleware.GetRequestID(c), board.Name)

	c.JSON(http.StatusCreated, dto.ToBoardDTO(*board))
}

// GetBoard returns the Kanban view of a board: every task grouped into its
// status column, plus the per-column counts
func (h *BoardHandler) GetBoard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boardService.GetBoard(boardID, userID)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	columns, err := h.boardService.Columns(boardID, userID)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	view := dto.BoardColumnsDTO{
		BoardDTO: dto.ToBoardDTO(*board),
		Columns:  make(map[models.TaskStatus][]dto.TaskDTO, len(columns)),
		Counts:   services.CountColumns(columns),
	}
	for status, tasks := range columns {
		view.Columns[status] = dto.ToTaskDTOs(tasks)
	}

	c.JSON(http.StatusOK, view)
}

// UpdateBoard updates board fields; editors and owners only
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateBoardRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Archived    *bool   `json:"archived"`
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	board, err := h.boardService.UpdateBoard(boardID, userID, services.UpdateBoardInput{
		Name:        req.Name,
		Description: req.Description,
		Archived:    req.Archived,
	})
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(*board))
}

// DeleteBoard deletes a board and its tasks; project owner only
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.boardService.DeleteBoard(boardID, userID); err != nil {
		respondBoardError(c, err)
		return
	}

	h.auditService.Record(userID, "board.delete", "board", boardID, middleware.GetRequestID(c), "")

	c.JSON(http.StatusOK, gin.H{
		"message": "Board deleted successfully",
	})
}

func respondBoardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBoardNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrBoardNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		respondAccessError(c, err)
	}
}
