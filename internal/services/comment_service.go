package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"gitboard/internal/models"
	"gitboard/internal/repository"
)

var ErrCommentBodyRequired = errors.New("comment body is required")

// CommentService manages the append-only comment thread on tasks. Comments
// are never edited or deleted; corrections are follow-up comments.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	boardRepo   repository.BoardRepository
	access      *AccessService
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository, boardRepo repository.BoardRepository, access *AccessService) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		boardRepo:   boardRepo,
		access:      access,
	}
}

// AddComment appends a comment to a task. Any project member may comment,
// viewers included.
func (s *CommentService) AddComment(taskID, actorID uint64, body string) (*models.TaskComment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrCommentBodyRequired
	}

	board, err := s.boardOfTask(taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID,
		models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	comment := &models.TaskComment{
		TaskID: taskID,
		UserID: actorID,
		Body:   body,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// ListComments returns a task's comments oldest first, so the thread reads
// top to bottom.
func (s *CommentService) ListComments(taskID, actorID uint64) ([]models.TaskComment, error) {
	board, err := s.boardOfTask(taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Authorize(board.ProjectID, actorID,
		models.RoleOwner, models.RoleEditor, models.RoleViewer); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) boardOfTask(taskID uint64) (*models.Board, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	board, err := s.boardRepo.FindByID(task.BoardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find board: %w", err)
	}
	return board, nil
}
