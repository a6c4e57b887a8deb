package repository

import (
	"gorm.io/gorm"

	"gitboard/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Count returns the number of registered users
func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// Purge removes a user. Tasks assigned to the user are unassigned; tasks
// created by the user block the purge (restrict-on-delete).
func (r *GormUserRepository) Purge(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var authored int64
		if err := tx.Model(&models.Task{}).Where("created_by = ?", id).Count(&authored).Error; err != nil {
			return err
		}
		if authored > 0 {
			return ErrUserHasCreatedTasks
		}

		if err := tx.Model(&models.Task{}).Where("assigned_to = ?", id).
			Update("assigned_to", gorm.Expr("NULL")).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
