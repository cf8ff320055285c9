package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/fitmanager/backend/internal/infrastructure/persistence/models"
)

// GormInstallmentRepository implements ledger.InstallmentRepository using GORM.
// Installments have no tenant column; every tenant-scoped lookup joins
// through the owning contract, so an installment under a foreign or deleted
// contract resolves to ErrNotFound.
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByIDForTenant finds an installment by ID, resolving ownership through the parent contract
func (r *GormInstallmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN contracts ON contracts.id = installments.contract_id").
		Where("installments.id = ? AND contracts.tenant_id = ? AND contracts.deleted_at IS NULL", id, tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContract finds all live installments of a contract ordered by due date
func (r *GormInstallmentRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]*ledger.Installment, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("due_date ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}

	installments := make([]*ledger.Installment, len(installmentModels))
	for i := range installmentModels {
		installments[i] = installmentModels[i].ToDomain()
	}
	return installments, nil
}

// FindDueForTenant finds installments for a tenant filtered by status and due window
func (r *GormInstallmentRepository) FindDueForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.InstallmentFilter) ([]*ledger.Installment, error) {
	query := r.db.WithContext(ctx).Model(&models.InstallmentModel{}).
		Joins("JOIN contracts ON contracts.id = installments.contract_id").
		Where("contracts.tenant_id = ? AND contracts.deleted_at IS NULL", tenantID)

	if filter.Status != nil {
		query = query.Where("installments.status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("installments.due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("installments.due_date < ?", *filter.DueTo)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InstallmentSortFields, "due_date")
	query = query.Order("installments." + orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var installmentModels []models.InstallmentModel
	if err := query.Find(&installmentModels).Error; err != nil {
		return nil, err
	}

	installments := make([]*ledger.Installment, len(installmentModels))
	for i := range installmentModels {
		installments[i] = installmentModels[i].ToDomain()
	}
	return installments, nil
}

// SumPaidByContract sums AmountPaid over all live installments of a contract
func (r *GormInstallmentRepository) SumPaidByContract(ctx context.Context, contractID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&models.InstallmentModel{}).
		Where("contract_id = ?", contractID).
		Select("COALESCE(SUM(amount_paid), 0)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// Save creates or updates an installment
func (r *GormInstallmentRepository) Save(ctx context.Context, installment *ledger.Installment) error {
	model := models.InstallmentModelFromDomain(installment)
	return r.db.WithContext(ctx).Save(model).Error
}

// Update persists a loaded installment with optimistic locking (version check)
func (r *GormInstallmentRepository) Update(ctx context.Context, installment *ledger.Installment) error {
	model := models.InstallmentModelFromDomain(installment)
	result := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Where("id = ? AND version = ?", installment.ID, installment.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SaveAll creates or updates multiple installments
func (r *GormInstallmentRepository) SaveAll(ctx context.Context, installments []*ledger.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	installmentModels := make([]*models.InstallmentModel, len(installments))
	for i, installment := range installments {
		installmentModels[i] = models.InstallmentModelFromDomain(installment)
	}
	return r.db.WithContext(ctx).Save(installmentModels).Error
}

// SoftDelete soft deletes an installment. Ownership must already be resolved
// by the caller through FindByIDForTenant.
func (r *GormInstallmentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InstallmentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ ledger.InstallmentRepository = (*GormInstallmentRepository)(nil)
