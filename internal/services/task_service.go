package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"gitboard/internal/models"
	"gitboard/internal/repository"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTitleRequired        = errors.New("title is required")
	ErrTitleEmpty           = errors.New("title cannot be empty")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrInvalidAssignee      = errors.New("assignee is not a member of the project")
	ErrTaskPermissionDenied = errors.New("user does not have permission to modify this task")
)

// mutatorRoles are the roles allowed to change tasks. Viewers can look, not
// touch; global admins hold no task capability and need a membership like
// anyone else.
var mutatorRoles = []models.ProjectRole{models.RoleOwner, models.RoleEditor}

// TaskService enforces the task status state machine and task CRUD rules.
type TaskService struct {
	taskRepo    repository.TaskRepository
	boardRepo   repository.BoardRepository
	projectRepo repository.ProjectRepository
	access      *AccessService
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, boardRepo repository.BoardRepository, projectRepo repository.ProjectRepository, access *AccessService) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		boardRepo:   boardRepo,
		projectRepo: projectRepo,
		access:      access,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	BoardID     uint64
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	AssignedTo  *uint64
	DueDate     *time.Time
	OrderIndex  int
	CreatorID   uint64
}

// CreateTask creates a task on a board. An omitted status defaults to
// "To Do"; a present but unknown status fails validation rather than being
// silently replaced.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	board, err := s.findBoard(input.BoardID)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Authorize(board.ProjectID, input.CreatorID, mutatorRoles...); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.StatusTodo
	} else if !models.ValidTaskStatus(input.Status) {
		return nil, ErrInvalidStatus
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	} else if !models.ValidTaskPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	if input.AssignedTo != nil {
		if err := s.ensureProjectMember(board.ProjectID, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		BoardID:     input.BoardID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		AssignedTo:  input.AssignedTo,
		DueDate:     input.DueDate,
		OrderIndex:  input.OrderIndex,
		CreatedBy:   input.CreatorID,
	}

	// A task born in Done carries a completion time, same as one moved there.
	if task.Status == models.StatusDone {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee", "Labels")
}

// GetTask returns a task visible to any member of the parent project.
func (s *TaskService) GetTask(taskID, actorID uint64) (*models.Task, error) {
	task, board, err := s.findTaskWithBoard(taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID,
		models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee", "Labels", "Comments")
}

// UpdateTaskInput represents optional field updates for a task. Status and
// order changes go through Move and Reorder, not here.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *models.TaskPriority
	AssignedTo    *uint64
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
}

// UpdateTask updates task fields; editors and owners only.
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, board, err := s.findTaskWithBoard(taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID, mutatorRoles...); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearAssignee {
		task.AssignedTo = nil
	} else if input.AssignedTo != nil {
		if err := s.ensureProjectMember(board.ProjectID, *input.AssignedTo); err != nil {
			return nil, err
		}
		task.AssignedTo = input.AssignedTo
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee", "Labels")
}

// Move transitions a task to another Kanban column. The four column literals
// form a flat set: any column may move to any other, backwards included, and
// moving to the current column is a no-op. order_index keeps its last
// explicit value; repositioning within the column is Reorder's job.
func (s *TaskService) Move(taskID uint64, newStatus models.TaskStatus, actorID uint64) error {
	task, board, err := s.findTaskWithBoard(taskID)
	if err != nil {
		return err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID, mutatorRoles...); err != nil {
		return err
	}

	if !models.ValidTaskStatus(newStatus) {
		return ErrInvalidStatus
	}

	guard := repository.MembershipGuard{
		ProjectID: board.ProjectID,
		UserID:    actorID,
		Roles:     mutatorRoles,
	}

	if err := s.taskRepo.Transition(task.ID, newStatus, guard); err != nil {
		switch {
		case errors.Is(err, repository.ErrMembershipRevoked):
			return ErrTaskPermissionDenied
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to move task: %w", err)
	}

	return nil
}

// Reorder places a task at an explicit position within a column, the
// precision half of drag-and-drop. newStatus may be empty to keep the
// current column.
func (s *TaskService) Reorder(taskID uint64, newIndex int, newStatus models.TaskStatus, actorID uint64) error {
	task, board, err := s.findTaskWithBoard(taskID)
	if err != nil {
		return err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID, mutatorRoles...); err != nil {
		return err
	}

	var status *models.TaskStatus
	if newStatus != "" {
		if !models.ValidTaskStatus(newStatus) {
			return ErrInvalidStatus
		}
		status = &newStatus
	}

	guard := repository.MembershipGuard{
		ProjectID: board.ProjectID,
		UserID:    actorID,
		Roles:     mutatorRoles,
	}

	if err := s.taskRepo.Reorder(task.ID, newIndex, status, guard); err != nil {
		switch {
		case errors.Is(err, repository.ErrMembershipRevoked):
			return ErrTaskPermissionDenied
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to reorder task: %w", err)
	}

	return nil
}

// DeleteTask removes a task; editors and owners only.
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, board, err := s.findTaskWithBoard(taskID)
	if err != nil {
		return err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID, mutatorRoles...); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) findBoard(boardID uint64) (*models.Board, error) {
	board, err := s.boardRepo.FindByID(boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to find board: %w", err)
	}
	return board, nil
}

func (s *TaskService) findTaskWithBoard(taskID uint64) (*models.Task, *models.Board, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	board, err := s.boardRepo.FindByID(task.BoardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to find board: %w", err)
	}

	return task, board, nil
}

func (s *TaskService) ensureProjectMember(projectID, userID uint64) error {
	memberships, err := s.projectRepo.FindMemberships(projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify assignee membership: %w", err)
	}
	if len(memberships) == 0 {
		return ErrInvalidAssignee
	}
	return nil
}
