package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/fitmanager/backend/internal/infrastructure/persistence/models"
)

// GormContractRepository implements ledger.ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByIDForTenant finds a contract by ID within a tenant
func (r *GormContractRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all contracts for a tenant
func (r *GormContractRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.ContractFilter) ([]*ledger.Contract, error) {
	var contractModels []models.ContractModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ContractModel{}).Where("tenant_id = ?", tenantID),
		filter,
		true,
	)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]*ledger.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = contractModels[i].ToDomain()
	}
	return contracts, nil
}

// CountForTenant counts contracts for a tenant
func (r *GormContractRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.ContractFilter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ContractModel{}).Where("tenant_id = ?", tenantID),
		filter,
		false,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByClientForTenant finds all contracts of a client within a tenant
func (r *GormContractRepository) FindByClientForTenant(ctx context.Context, tenantID, clientID uuid.UUID) ([]*ledger.Contract, error) {
	var contractModels []models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("start_date DESC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]*ledger.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = contractModels[i].ToDomain()
	}
	return contracts, nil
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, contract *ledger.Contract) error {
	model := models.ContractModelFromDomain(contract)
	return r.db.WithContext(ctx).Save(model).Error
}

// Update persists a loaded contract with optimistic locking (version check)
func (r *GormContractRepository) Update(ctx context.Context, contract *ledger.Contract) error {
	model := models.ContractModelFromDomain(contract)
	result := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("id = ? AND version = ?", contract.ID, contract.Version-1).
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

// SoftDeleteForTenant soft deletes a contract within a tenant
func (r *GormContractRepository) SoftDeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ContractModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormContractRepository) applyFilter(query *gorm.DB, filter ledger.ContractFilter, paginate bool) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.Closed != nil {
		query = query.Where("closed = ?", *filter.Closed)
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ContractSortFields, "start_date")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

var _ ledger.ContractRepository = (*GormContractRepository)(nil)
