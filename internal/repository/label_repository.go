package repository

import (
	"gorm.io/gorm"

	"gitboard/internal/models"
)

// GormLabelRepository is a GORM implementation of LabelRepository
type GormLabelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a new LabelRepository
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &GormLabelRepository{db: db}
}

// Create creates a new label
func (r *GormLabelRepository) Create(label *models.Label) error {
	return r.db.Create(label).Error
}

// FindByID finds a label by ID
func (r *GormLabelRepository) FindByID(id uint64) (*models.Label, error) {
	var label models.Label
	if err := r.db.First(&label, id).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// FindByName finds a label by name within a project
func (r *GormLabelRepository) FindByName(projectID uint64, name string) (*models.Label, error) {
	var label models.Label
	if err := r.db.Where("project_id = ? AND name = ?", projectID, name).
		First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// ListByProject lists the labels of a project
func (r *GormLabelRepository) ListByProject(projectID uint64) ([]models.Label, error) {
	var labels []models.Label
	if err := r.db.Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

// Delete deletes a label and its task links
func (r *GormLabelRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_labels WHERE label_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Label{}, id).Error
	})
}

// Attach links a label to a task
func (r *GormLabelRepository) Attach(taskID, labelID uint64) error {
	task := models.Task{ID: taskID}
	return r.db.Model(&task).Association("Labels").Append(&models.Label{ID: labelID})
}

// Detach unlinks a label from a task
func (r *GormLabelRepository) Detach(taskID, labelID uint64) error {
	task := models.Task{ID: taskID}
	return r.db.Model(&task).Association("Labels").Delete(&models.Label{ID: labelID})
}
