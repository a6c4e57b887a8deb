package models

import "time"

// TaskHistory records a single field change on a task. Append-only.
type TaskHistory struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	Field     string    `gorm:"type:varchar(50);not null" json:"field"`
	OldValue  string    `gorm:"type:varchar(255)" json:"old_value"`
	NewValue  string    `gorm:"type:varchar(255)" json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLog records a user-visible action for auditing. Append-only and
// best-effort: a failed audit write must never fail the request it describes.
type AuditLog struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	UserID     uint64    `gorm:"not null;index" json:"user_id"`
	Action     string    `gorm:"type:varchar(100);not null" json:"action"`
	EntityType string    `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   uint64    `gorm:"not null" json:"entity_id"`
	RequestID  string    `gorm:"type:varchar(36)" json:"request_id"`
	Detail     string    `gorm:"type:text" json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}
