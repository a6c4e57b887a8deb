package repository

import (
	"gorm.io/gorm"

	"gitboard/internal/models"
)

// GormBoardRepository is a GORM implementation of BoardRepository
type GormBoardRepository struct {
	db *gorm.DB
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &GormBoardRepository{db: db}
}

// Create creates a new board
func (r *GormBoardRepository) Create(board *models.Board) error {
	return r.db.Create(board).Error
}

// FindByID finds a board by ID
func (r *GormBoardRepository) FindByID(id uint64) (*models.Board, error) {
	var board models.Board
	if err := r.db.First(&board, id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// ListByProject lists the boards of a project, newest first
func (r *GormBoardRepository) ListByProject(projectID uint64) ([]models.Board, error) {
	var boards []models.Board
	if err := r.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// Update updates a board
func (r *GormBoardRepository) Update(board *models.Board) error {
	return r.db.Save(board).Error
}

// Delete deletes a board and all of its tasks in a transaction
func (r *GormBoardRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteTasksOfBoards(tx, []uint64{id}); err != nil {
			return err
		}
		return tx.Delete(&models.Board{}, id).Error
	})
}
