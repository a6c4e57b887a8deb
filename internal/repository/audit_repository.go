package repository

import (
	"gorm.io/gorm"

	"gitboard/internal/database"
	"gitboard/internal/models"
	"gitboard/internal/utils"
)

// GormAuditLogRepository is a GORM implementation of AuditLogRepository
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Record appends an audit entry
func (r *GormAuditLogRepository) Record(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// ListByEntity returns one page of the audit trail of an entity, newest
// first, together with the total number of entries
func (r *GormAuditLogRepository) ListByEntity(entityType string, entityID uint64, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	query := r.db.Model(&models.AuditLog{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	if err := query.
		Order("created_at DESC, id DESC").
		Scopes(database.Paginate(params)).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
