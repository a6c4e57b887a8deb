package repository

import (
	"time"

	"gorm.io/gorm"

	"gitboard/internal/database"
	"gitboard/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByBoard returns the board's tasks in canonical column order
func (r *GormTaskRepository) ListByBoard(boardID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Preload("Assignee").Preload("Labels").
		Where("board_id = ?", boardID).
		Scopes(database.ColumnOrder()).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete deletes a task with its comments, history and label links
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_labels WHERE task_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, id).Error
	})
}

// Transition sets the task status inside a single transaction. The guard's
// membership row is re-read in the same transaction, so a revocation between
// the caller's authorization and this write fails the move instead of
// slipping through. order_index is deliberately left untouched.
func (r *GormTaskRepository) Transition(taskID uint64, status models.TaskStatus, guard MembershipGuard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			return err
		}

		if err := checkGuard(tx, guard); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": status}
		if status == models.StatusDone && task.Status != models.StatusDone {
			now := time.Now()
			updates["completed_at"] = &now
		} else if status != models.StatusDone {
			updates["completed_at"] = gorm.Expr("NULL")
		}

		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Updates(updates).Error; err != nil {
			return err
		}

		if task.Status == status {
			// Idempotent move; nothing changed worth recording.
			return nil
		}

		history := models.TaskHistory{
			TaskID:   taskID,
			UserID:   guard.UserID,
			Field:    "status",
			OldValue: string(task.Status),
			NewValue: string(status),
		}
		return tx.Create(&history).Error
	})
}

// Reorder writes an explicit order_index (and optionally a status) to the
// moved task under the same transactional guard as Transition. Sibling tasks
// are not shifted; column ordering stays deterministic via the created_at
// tie-break.
func (r *GormTaskRepository) Reorder(taskID uint64, index int, status *models.TaskStatus, guard MembershipGuard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			return err
		}

		if err := checkGuard(tx, guard); err != nil {
			return err
		}

		updates := map[string]interface{}{"order_index": index}
		if status != nil {
			updates["status"] = *status
			if *status == models.StatusDone && task.Status != models.StatusDone {
				now := time.Now()
				updates["completed_at"] = &now
			} else if *status != models.StatusDone {
				updates["completed_at"] = gorm.Expr("NULL")
			}
		}

		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Updates(updates).Error; err != nil {
			return err
		}

		if status == nil || task.Status == *status {
			return nil
		}

		history := models.TaskHistory{
			TaskID:   taskID,
			UserID:   guard.UserID,
			Field:    "status",
			OldValue: string(task.Status),
			NewValue: string(*status),
		}
		return tx.Create(&history).Error
	})
}

// StatusTotals counts tasks per status across the given projects
func (r *GormTaskRepository) StatusTotals(projectIDs []uint64) (map[models.TaskStatus]int64, error) {
	totals := make(map[models.TaskStatus]int64, 4)
	for _, s := range models.TaskStatuses() {
		totals[s] = 0
	}
	if len(projectIDs) == 0 {
		return totals, nil
	}

	rows := []struct {
		Status models.TaskStatus
		Total  int64
	}{}
	err := r.db.Model(&models.Task{}).
		Select("tasks.status AS status, COUNT(*) AS total").
		Joins("JOIN boards ON boards.id = tasks.board_id").
		Where("boards.project_id IN ? AND boards.deleted_at IS NULL", projectIDs).
		Group("tasks.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		totals[row.Status] = row.Total
	}
	return totals, nil
}

// CountByStatus counts all tasks in a given status
func (r *GormTaskRepository) CountByStatus(status models.TaskStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func checkGuard(tx *gorm.DB, guard MembershipGuard) error {
	var count int64
	if err := tx.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ? AND role IN ?",
			guard.ProjectID, guard.UserID, guard.Roles).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrMembershipRevoked
	}
	return nil
}
