package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus is one of the four Kanban columns. The literals are part of the
// JSON wire contract for the drag-and-drop move endpoint and must match
// exactly, including case and spacing.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusReview     TaskStatus = "Review"
	StatusDone       TaskStatus = "Done"
)

// TaskStatuses returns the Kanban columns in board order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{StatusTodo, StatusInProgress, StatusReview, StatusDone}
}

// ValidTaskStatus reports whether s matches one of the four column literals.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityMedium   TaskPriority = "Medium"
	PriorityHigh     TaskPriority = "High"
	PriorityCritical TaskPriority = "Critical"
)

// ValidTaskPriority reports whether p is one of the known priorities.
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	BoardID     uint64         `gorm:"not null;index:idx_tasks_board_status" json:"board_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'To Do';index:idx_tasks_board_status" json:"status"`
	Priority    TaskPriority   `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	AssignedTo  *uint64        `gorm:"index" json:"assigned_to"`
	DueDate     *time.Time     `gorm:"index" json:"due_date"`
	CompletedAt *time.Time     `json:"completed_at"`
	OrderIndex  int            `gorm:"not null;default:0" json:"order_index"`
	CreatedBy   uint64         `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Board    Board         `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	Assignee *User         `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Creator  User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Labels   []Label       `gorm:"many2many:task_labels" json:"labels,omitempty"`
	Comments []TaskComment `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}
