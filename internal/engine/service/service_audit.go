package service

import (
	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/internal/engine/repo"
	"github.com/go-arcade/ingest/pkg/log"
)

type AuditService struct {
	auditRepo repo.IAuditRepository
}

func NewAuditService(auditRepo repo.IAuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record appends an entry. Audit is best effort, a failed write is logged and
// never fails the operation being audited.
func (as *AuditService) Record(userID, action, resource, details string) {
	entry := &model.AuditLog{
		UserID:   userID,
		Action:   action,
		Resource: resource,
		Details:  details,
	}
	if err := as.auditRepo.CreateAuditLog(entry); err != nil {
		log.Errorw("failed to write audit log",
			"action", action,
			"resource", resource,
			"error", err)
	}
}

func (as *AuditService) Create(entry *model.AuditLog) error {
	if entry.UserID == "" || entry.Action == "" {
		return invalid("user_id and action are required")
	}
	entry.ID = 0
	return as.auditRepo.CreateAuditLog(entry)
}

func (as *AuditService) List(filter repo.AuditFilter, skip, limit int) ([]*model.AuditLog, int64, error) {
	return as.auditRepo.ListAuditLogs(filter, skip, limit)
}
