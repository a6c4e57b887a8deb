package services

import (
	"log"

	"gitboard/internal/models"
	"gitboard/internal/repository"
	"gitboard/internal/utils"
)

// AuditService records who did what to which entity. Recording is best
// effort: a failed audit write is logged and never fails the request that
// triggered it.
type AuditService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record writes an audit entry. requestID correlates the entry with the
// HTTP request that caused it.
func (s *AuditService) Record(userID uint64, action, entityType string, entityID uint64, requestID, detail string) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestID,
		Detail:     detail,
	}
	if err := s.auditRepo.Record(entry); err != nil {
		log.Printf("audit: failed to record %s %s/%d: %v", action, entityType, entityID, err)
	}
}

// History returns one page of the audit trail for one entity, newest
// first, together with the total entry count.
func (s *AuditService) History(entityType string, entityID uint64, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	return s.auditRepo.ListByEntity(entityType, entityID, params)
}
