package repository

import (
	"errors"

	"gorm.io/gorm"

	"gitboard/internal/models"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithOwner creates a project and its owner membership atomically.
func (r *GormProjectRepository) CreateWithOwner(project *models.Project, owner *models.ProjectMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		owner.ProjectID = project.ID
		owner.Role = models.RoleOwner

		return tx.Create(owner).Error
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// CountByStatus counts projects in the given lifecycle state
func (r *GormProjectRepository) CountByStatus(status models.ProjectStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Delete deletes a project and all dependent rows in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var boardIDs []uint64
		if err := tx.Model(&models.Board{}).Where("project_id = ?", id).
			Pluck("id", &boardIDs).Error; err != nil {
			return err
		}

		if len(boardIDs) > 0 {
			if err := deleteTasksOfBoards(tx, boardIDs); err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).Delete(&models.Board{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Label{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// UpdateMemberRole changes a member's role
func (r *GormProjectRepository) UpdateMemberRole(projectID, userID uint64, role models.ProjectRole) error {
	result := r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindMemberships returns all membership rows for a (project, user) pair.
// The composite primary key keeps this at zero or one row; the full slice is
// returned so the access evaluator can verify the invariant itself.
func (r *GormProjectRepository) FindMemberships(projectID, userID uint64) ([]models.ProjectMember, error) {
	var memberships []models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembers lists all members of a project with their users
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembershipsByUser lists all projects a user is a member of
func (r *GormProjectRepository) ListMembershipsByUser(userID uint64) ([]models.ProjectMember, error) {
	var memberships []models.ProjectMember
	if err := r.db.Preload("Project").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// TransferOwnership swaps the owner role between two members in one
// transaction, preserving the single-owner invariant.
func (r *GormProjectRepository) TransferOwnership(projectID, fromUserID, toUserID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var from, to models.ProjectMember
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, fromUserID).
			First(&from).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, toUserID).
			First(&to).Error; err != nil {
			return err
		}
		if from.Role != models.RoleOwner {
			return errors.New("project repository: transfer source is not the owner")
		}

		if err := tx.Model(&models.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", projectID, fromUserID).
			Update("role", models.RoleEditor).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", projectID, toUserID).
			Update("role", models.RoleOwner).Error; err != nil {
			return err
		}

		return tx.Model(&models.Project{}).Where("id = ?", projectID).
			Update("owner_id", toUserID).Error
	})
}

// deleteTasksOfBoards removes the tasks of the given boards together with
// their comments, history rows and label links.
func deleteTasksOfBoards(tx *gorm.DB, boardIDs []uint64) error {
	var taskIDs []uint64
	if err := tx.Model(&models.Task{}).Where("board_id IN ?", boardIDs).
		Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if len(taskIDs) == 0 {
		return nil
	}

	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskHistory{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM task_labels WHERE task_id IN ?", taskIDs).Error; err != nil {
		return err
	}

	return tx.Where("board_id IN ?", boardIDs).Delete(&models.Task{}).Error
}
