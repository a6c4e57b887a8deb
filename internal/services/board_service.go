package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"gitboard/internal/access"
	"gitboard/internal/models"
	"gitboard/internal/repository"
)

var (
	ErrBoardNotFound     = errors.New("board not found")
	ErrBoardNameRequired = errors.New("board name is required")
)

// BoardService provides board CRUD and the Kanban column aggregation.
type BoardService struct {
	boardRepo repository.BoardRepository
	taskRepo  repository.TaskRepository
	access    *AccessService
}

// NewBoardService creates a new BoardService.
func NewBoardService(boardRepo repository.BoardRepository, taskRepo repository.TaskRepository, access *AccessService) *BoardService {
	return &BoardService{
		boardRepo: boardRepo,
		taskRepo:  taskRepo,
		access:    access,
	}
}

// BoardSummary is a board with its per-column task counts, for list views.
type BoardSummary struct {
	Board      models.Board              `json:"board"`
	TaskCounts map[models.TaskStatus]int `json:"task_counts"`
}

// GroupTasks buckets tasks by status. Every task lands in exactly one
// bucket, all four columns are always present, and each column is ordered by
// order_index ascending with created_at descending breaking ties. Counting
// and the board view both derive from this one grouping.
func GroupTasks(tasks []models.Task) map[models.TaskStatus][]models.Task {
	grouped := make(map[models.TaskStatus][]models.Task, 4)
	for _, s := range models.TaskStatuses() {
		grouped[s] = []models.Task{}
	}

	for _, task := range tasks {
		grouped[task.Status] = append(grouped[task.Status], task)
	}

	for status, bucket := range grouped {
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].OrderIndex != bucket[j].OrderIndex {
				return bucket[i].OrderIndex < bucket[j].OrderIndex
			}
			return bucket[i].CreatedAt.After(bucket[j].CreatedAt)
		})
		grouped[status] = bucket
	}

	return grouped
}

// CountColumns derives per-column counts from a grouping.
func CountColumns(columns map[models.TaskStatus][]models.Task) map[models.TaskStatus]int {
	counts := make(map[models.TaskStatus]int, len(columns))
	for status, bucket := range columns {
		counts[status] = len(bucket)
	}
	return counts
}

// Columns returns the board's tasks bucketed per Kanban column. Any project
// member may view a board.
func (s *BoardService) Columns(boardID, actorID uint64) (map[models.TaskStatus][]models.Task, error) {
	board, err := s.findBoard(boardID)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID,
		models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByBoard(boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list board tasks: %w", err)
	}

	return GroupTasks(tasks), nil
}

// ColumnCounts returns per-column task counts for a board, derived from the
// same grouping Columns uses.
func (s *BoardService) ColumnCounts(boardID, actorID uint64) (map[models.TaskStatus]int, error) {
	columns, err := s.Columns(boardID, actorID)
	if err != nil {
		return nil, err
	}
	return CountColumns(columns), nil
}

// ListBoards returns the project's boards with per-column counts.
func (s *BoardService) ListBoards(projectID, actorID uint64) ([]BoardSummary, error) {
	if _, err := s.access.Authorize(projectID, actorID,
		models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	boards, err := s.boardRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}

	summaries := make([]BoardSummary, len(boards))
	for i, board := range boards {
		tasks, err := s.taskRepo.ListByBoard(board.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list board tasks: %w", err)
		}
		summaries[i] = BoardSummary{
			Board:      board,
			TaskCounts: CountColumns(GroupTasks(tasks)),
		}
	}

	return summaries, nil
}

// CreateBoardInput represents parameters to create a board.
type CreateBoardInput struct {
	ProjectID   uint64
	Name        string
	Description string
}

// CreateBoard creates a board; editors and owners only.
func (s *BoardService) CreateBoard(input CreateBoardInput, actorID uint64) (*models.Board, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrBoardNameRequired
	}

	if _, err := s.access.Authorize(input.ProjectID, actorID,
		models.RoleOwner, models.RoleEditor); err != nil {
		return nil, err
	}

	board := &models.Board{
		ProjectID:   input.ProjectID,
		Name:        input.Name,
		Description: input.Description,
	}

	if err := s.boardRepo.Create(board); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	return board, nil
}

// UpdateBoardInput represents optional field updates for a board.
type UpdateBoardInput struct {
	Name        *string
	Description *string
	Archived    *bool
}

// UpdateBoard updates board fields; editors and owners only.
func (s *BoardService) UpdateBoard(boardID, actorID uint64, input UpdateBoardInput) (*models.Board, error) {
	board, err := s.findBoard(boardID)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID,
		models.RoleOwner, models.RoleEditor); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrBoardNameRequired
		}
		board.Name = *input.Name
	}
	if input.Description != nil {
		board.Description = *input.Description
	}
	if input.Archived != nil {
		board.Archived = *input.Archived
	}

	if err := s.boardRepo.Update(board); err != nil {
		return nil, fmt.Errorf("failed to update board: %w", err)
	}

	return board, nil
}

// DeleteBoard removes a board and its tasks. Only the project owner and
// global admins (via the CanDeleteBoard capability) may delete. This is the
// single operation that honors an admin capability past a failed role
// check.
func (s *BoardService) DeleteBoard(boardID, actorID uint64) error {
	board, err := s.findBoard(boardID)
	if err != nil {
		return err
	}

	decision, err := s.access.Authorize(board.ProjectID, actorID, models.RoleOwner)
	switch {
	case err == nil:
	case errors.Is(err, access.ErrNotAMember), errors.Is(err, access.ErrInsufficientRole):
		if !decision.CanDeleteBoard || !decision.CanBypassMembership {
			return err
		}
	default:
		return err
	}

	if err := s.boardRepo.Delete(boardID); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	return nil
}

// GetBoard returns a board visible to any project member.
func (s *BoardService) GetBoard(boardID, actorID uint64) (*models.Board, error) {
	board, err := s.findBoard(boardID)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID,
		models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	return board, nil
}

func (s *BoardService) findBoard(boardID uint64) (*models.Board, error) {
	board, err := s.boardRepo.FindByID(boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to find board: %w", err)
	}
	return board, nil
}
