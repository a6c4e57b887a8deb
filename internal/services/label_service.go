package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"gitboard/internal/models"
	"gitboard/internal/repository"
)

var (
	ErrLabelNotFound        = errors.New("label not found")
	ErrLabelNameRequired    = errors.New("label name is required")
	ErrLabelNameTaken       = errors.New("a label with this name already exists in the project")
	ErrLabelProjectMismatch = errors.New("label does not belong to the task's project")
)

const defaultLabelColor = "#10B981"

// LabelService manages per-project labels and their attachment to tasks.
type LabelService struct {
	labelRepo repository.LabelRepository
	taskRepo  repository.TaskRepository
	boardRepo repository.BoardRepository
	access    *AccessService
}

// NewLabelService creates a new LabelService.
func NewLabelService(labelRepo repository.LabelRepository, taskRepo repository.TaskRepository, boardRepo repository.BoardRepository, access *AccessService) *LabelService {
	return &LabelService{
		labelRepo: labelRepo,
		taskRepo:  taskRepo,
		boardRepo: boardRepo,
		access:    access,
	}
}

// CreateLabel creates a label in a project. Names are unique within the
// project; the same name may exist in different projects.
func (s *LabelService) CreateLabel(projectID uint64, name, color string, actorID uint64) (*models.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLabelNameRequired
	}
	if color == "" {
		color = defaultLabelColor
	}

	if _, err := s.access.Authorize(projectID, actorID, mutatorRoles...); err != nil {
		return nil, err
	}

	if existing, err := s.labelRepo.FindByName(projectID, name); err == nil && existing != nil {
		return nil, ErrLabelNameTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check label name: %w", err)
	}

	label := &models.Label{
		ProjectID: projectID,
		Name:      name,
		Color:     color,
	}
	if err := s.labelRepo.Create(label); err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}

	return label, nil
}

// ListLabels returns a project's labels; any member may read them.
func (s *LabelService) ListLabels(projectID, actorID uint64) ([]models.Label, error) {
	if _, err := s.access.Authorize(projectID, actorID,
		models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	labels, err := s.labelRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

// DeleteLabel removes a label and detaches it from every task.
func (s *LabelService) DeleteLabel(labelID, actorID uint64) error {
	label, err := s.findLabel(labelID)
	if err != nil {
		return err
	}

	if _, err := s.access.Authorize(label.ProjectID, actorID, mutatorRoles...); err != nil {
		return err
	}

	if err := s.labelRepo.Delete(label.ID); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return nil
}

// AttachLabel adds a label to a task. The label must belong to the same
// project as the task's board; attaching an already-attached label is a
// no-op.
func (s *LabelService) AttachLabel(taskID, labelID, actorID uint64) error {
	task, board, label, err := s.resolve(taskID, labelID)
	if err != nil {
		return err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID, mutatorRoles...); err != nil {
		return err
	}

	if label.ProjectID != board.ProjectID {
		return ErrLabelProjectMismatch
	}

	if err := s.labelRepo.Attach(task.ID, label.ID); err != nil {
		return fmt.Errorf("failed to attach label: %w", err)
	}
	return nil
}

// DetachLabel removes a label from a task.
func (s *LabelService) DetachLabel(taskID, labelID, actorID uint64) error {
	task, board, label, err := s.resolve(taskID, labelID)
	if err != nil {
		return err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID, mutatorRoles...); err != nil {
		return err
	}

	if err := s.labelRepo.Detach(task.ID, label.ID); err != nil {
		return fmt.Errorf("failed to detach label: %w", err)
	}
	return nil
}

func (s *LabelService) findLabel(labelID uint64) (*models.Label, error) {
	label, err := s.labelRepo.FindByID(labelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabelNotFound
		}
		return nil, fmt.Errorf("failed to find label: %w", err)
	}
	return label, nil
}

func (s *LabelService) resolve(taskID, labelID uint64) (*models.Task, *models.Board, *models.Label, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrTaskNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	board, err := s.boardRepo.FindByID(task.BoardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrTaskNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to find board: %w", err)
	}

	label, err := s.findLabel(labelID)
	if err != nil {
		return nil, nil, nil, err
	}

	return task, board, label, nil
}
