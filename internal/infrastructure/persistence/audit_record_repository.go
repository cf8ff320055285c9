package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/fitmanager/backend/internal/infrastructure/persistence/models"
)

// GormAuditRecordRepository implements ledger.AuditRecordRepository using GORM.
// The table is append-only.
type GormAuditRecordRepository struct {
	db *gorm.DB
}

// NewGormAuditRecordRepository creates a new GormAuditRecordRepository
func NewGormAuditRecordRepository(db *gorm.DB) *GormAuditRecordRepository {
	return &GormAuditRecordRepository{db: db}
}

// Create appends a new audit record
func (r *GormAuditRecordRepository) Create(ctx context.Context, record *ledger.AuditRecord) error {
	model := models.AuditRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByEntityForTenant finds the audit trail of one entity, newest first
func (r *GormAuditRecordRepository) FindByEntityForTenant(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]*ledger.AuditRecord, error) {
	var recordModels []models.AuditRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Order("created_at DESC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]*ledger.AuditRecord, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}
	return records, nil
}

// FindAllForTenant finds audit records for a tenant, newest first
func (r *GormAuditRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*ledger.AuditRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditRecordModel{}).Where("tenant_id = ?", tenantID)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AuditRecordSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var recordModels []models.AuditRecordModel
	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]*ledger.AuditRecord, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}
	return records, nil
}

var _ ledger.AuditRecordRepository = (*GormAuditRecordRepository)(nil)
