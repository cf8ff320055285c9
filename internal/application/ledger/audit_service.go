package ledger

import (
	"context"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditService exposes the audit trail for inspection. It is read-only:
// records are written by the mutating services inside their transactions.
type AuditService struct {
	auditRepo ledger.AuditRecordRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo ledger.AuditRecordRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// ListForEntity returns the audit history of one entity, newest first
func (s *AuditService) ListForEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]*AuditRecordResponse, error) {
	records, err := s.auditRepo.FindByEntityForTenant(ctx, tenantID, entityType, entityID)
	if err != nil {
		return nil, err
	}

	items := make([]*AuditRecordResponse, len(records))
	for n, r := range records {
		items[n] = toAuditRecordResponse(r)
	}
	return items, nil
}

// List returns a page of the tenant's audit trail
func (s *AuditService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*AuditRecordResponse, error) {
	records, err := s.auditRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*AuditRecordResponse, len(records))
	for n, r := range records {
		items[n] = toAuditRecordResponse(r)
	}
	return items, nil
}
