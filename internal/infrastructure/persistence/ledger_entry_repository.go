package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/fitmanager/backend/internal/infrastructure/persistence/models"
)

// GormLedgerEntryRepository implements ledger.LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// FindByIDForTenant finds a ledger entry by ID within a tenant
func (r *GormLedgerEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var model models.LedgerEntryModel
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

// FindAllForTenant finds all ledger entries for a tenant
func (r *GormLedgerEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.LedgerEntryFilter) ([]*ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).Where("tenant_id = ?", tenantID),
		filter,
		true,
	)

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*ledger.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return entries, nil
}

// CountForTenant counts ledger entries for a tenant
func (r *GormLedgerEntryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.LedgerEntryFilter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).Where("tenant_id = ?", tenantID),
		filter,
		false,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByInstallment finds the live entries recorded for an installment
func (r *GormLedgerEntryRepository) FindByInstallment(ctx context.Context, tenantID, installmentID uuid.UUID) ([]*ledger.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND installment_id = ?", tenantID, installmentID).
		Order("effective_date ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*ledger.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return entries, nil
}

// Save creates or updates a ledger entry
func (r *GormLedgerEntryRepository) Save(ctx context.Context, entry *ledger.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// CreateIfAbsent inserts the entry unless a live entry already exists for the
// same (tenant, recurring expense, period key). The conflict target is the
// partial unique index over the materialization key, so soft-deleted entries
// do not block re-materialization. Returns true when a row was inserted.
func (r *GormLedgerEntryRepository) CreateIfAbsent(ctx context.Context, entry *ledger.LedgerEntry) (bool, error) {
	model := models.LedgerEntryModelFromDomain(entry)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"},
			{Name: "recurring_expense_id"},
			{Name: "period_key"},
		},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "deleted_at IS NULL"},
		}},
		DoNothing: true,
	}).Create(model)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SoftDeleteForTenant soft deletes a ledger entry within a tenant
func (r *GormLedgerEntryRepository) SoftDeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LedgerEntryModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SoftDeleteByInstallment soft deletes all live entries recorded for an
// installment. Zero affected rows is not an error: an installment can be
// unpaid before any entry was written.
func (r *GormLedgerEntryRepository) SoftDeleteByInstallment(ctx context.Context, tenantID, installmentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.LedgerEntryModel{}, "tenant_id = ? AND installment_id = ?", tenantID, installmentID).
		Error
}

// SumByDirectionForTenant sums live entry amounts of one direction within
// [from, to) for a tenant
func (r *GormLedgerEntryRepository) SumByDirectionForTenant(ctx context.Context, tenantID uuid.UUID, direction ledger.Direction, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ? AND direction = ? AND effective_date >= ? AND effective_date < ?",
			tenantID, direction, from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *GormLedgerEntryRepository) applyFilter(query *gorm.DB, filter ledger.LedgerEntryFilter, paginate bool) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Origin != nil {
		query = query.Where("origin = ?", *filter.Origin)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.From != nil {
		query = query.Where("effective_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("effective_date < ?", *filter.To)
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, LedgerEntrySortFields, "effective_date")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

var _ ledger.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
