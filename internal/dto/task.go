package dto

import (
	"time"

	"gitboard/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// LabelDTO represents a label in API responses
type LabelDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	BoardID     uint64              `json:"board_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	CompletedAt *time.Time          `json:"completed_at"`
	OrderIndex  int                 `json:"order_index"`
	CreatedBy   uint64              `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Creator     *UserDTO            `json:"creator,omitempty"`
	Assignee    *UserDTO            `json:"assignee,omitempty"`
	Labels      []LabelDTO          `json:"labels,omitempty"`
	Comments    []CommentDTO        `json:"comments,omitempty"`
}

// CommentDTO represents a task comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	TaskID    uint64    `json:"task_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Author    *UserDTO  `json:"author,omitempty"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
	}
}

// ToLabelDTO converts a Label model to LabelDTO
func ToLabelDTO(label models.Label) LabelDTO {
	return LabelDTO{
		ID:    label.ID,
		Name:  label.Name,
		Color: label.Color,
	}
}

// ToCommentDTO converts a TaskComment model to CommentDTO
func ToCommentDTO(comment models.TaskComment) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
	if comment.User.ID != 0 {
		author := ToUserDTO(comment.User)
		dto.Author = &author
	}
	return dto
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		BoardID:     task.BoardID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		OrderIndex:  task.OrderIndex,
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	// Include labels if preloaded
	if len(task.Labels) > 0 {
		dto.Labels = make([]LabelDTO, len(task.Labels))
		for i, label := range task.Labels {
			dto.Labels[i] = ToLabelDTO(label)
		}
	}

	// Include comments if preloaded
	if len(task.Comments) > 0 {
		dto.Comments = make([]CommentDTO, len(task.Comments))
		for i, comment := range task.Comments {
			dto.Comments[i] = ToCommentDTO(comment)
		}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks to TaskDTOs
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
