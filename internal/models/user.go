package models

import (
	"time"

	"gorm.io/gorm"
)

// GlobalRole is the site-wide role of a user, independent of any project.
type GlobalRole string

const (
	GlobalRoleAdmin   GlobalRole = "admin"
	GlobalRoleManager GlobalRole = "manager"
	GlobalRoleMember  GlobalRole = "member"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         GlobalRole     `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	AvatarURL    string         `gorm:"type:varchar(500)" json:"avatar_url,omitempty"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	OwnedProjects []Project       `gorm:"foreignKey:OwnerID" json:"-"`
	Memberships   []ProjectMember `gorm:"foreignKey:UserID" json:"-"`
	CreatedTasks  []Task          `gorm:"foreignKey:CreatedBy" json:"-"`
	AssignedTasks []Task          `gorm:"foreignKey:AssignedTo" json:"-"`
}

// IsAdmin reports whether the user holds the global admin role.
func (u *User) IsAdmin() bool {
	return u.Role == GlobalRoleAdmin
}
