package models

import "time"

// Label is a project-scoped tag. Names are unique within a project.
type Label struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ProjectID uint64    `gorm:"not null;uniqueIndex:uniq_label_project" json:"project_id"`
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex:uniq_label_project" json:"name"`
	Color     string    `gorm:"type:varchar(7);default:'#10B981'" json:"color"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Tasks   []Task  `gorm:"many2many:task_labels" json:"tasks,omitempty"`
}
