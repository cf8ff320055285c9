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

// GormRecurringExpenseRepository implements ledger.RecurringExpenseRepository using GORM
type GormRecurringExpenseRepository struct {
	db *gorm.DB
}

// NewGormRecurringExpenseRepository creates a new GormRecurringExpenseRepository
func NewGormRecurringExpenseRepository(db *gorm.DB) *GormRecurringExpenseRepository {
	return &GormRecurringExpenseRepository{db: db}
}

// FindByIDForTenant finds a recurring expense by ID within a tenant
func (r *GormRecurringExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.RecurringExpense, error) {
	var model models.RecurringExpenseModel
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

// FindAllForTenant finds all recurring expenses for a tenant
func (r *GormRecurringExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.RecurringExpenseFilter) ([]*ledger.RecurringExpense, error) {
	query := r.db.WithContext(ctx).Model(&models.RecurringExpenseModel{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, RecurringExpenseSortFields, "name")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var expenseModels []models.RecurringExpenseModel
	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}

	expenses := make([]*ledger.RecurringExpense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = expenseModels[i].ToDomain()
	}
	return expenses, nil
}

// FindActiveForTenant finds all active recurring expenses for a tenant
func (r *GormRecurringExpenseRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]*ledger.RecurringExpense, error) {
	var expenseModels []models.RecurringExpenseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("name ASC").
		Find(&expenseModels).Error; err != nil {
		return nil, err
	}

	expenses := make([]*ledger.RecurringExpense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = expenseModels[i].ToDomain()
	}
	return expenses, nil
}

// Save creates or updates a recurring expense
func (r *GormRecurringExpenseRepository) Save(ctx context.Context, expense *ledger.RecurringExpense) error {
	model := models.RecurringExpenseModelFromDomain(expense)
	return r.db.WithContext(ctx).Save(model).Error
}

// Update persists a loaded expense with optimistic locking (version check)
func (r *GormRecurringExpenseRepository) Update(ctx context.Context, expense *ledger.RecurringExpense) error {
	model := models.RecurringExpenseModelFromDomain(expense)
	result := r.db.WithContext(ctx).
		Model(&models.RecurringExpenseModel{}).
		Where("id = ? AND version = ?", expense.ID, expense.Version-1).
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

// SoftDeleteForTenant soft deletes a recurring expense within a tenant
func (r *GormRecurringExpenseRepository) SoftDeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RecurringExpenseModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ ledger.RecurringExpenseRepository = (*GormRecurringExpenseRepository)(nil)
