package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitmanager/backend/internal/domain/crm"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/fitmanager/backend/internal/infrastructure/persistence/models"
)

// GormClientRepository implements crm.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByIDForTenant finds a client by ID within a tenant
func (r *GormClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	var model models.ClientModel
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

// FindAllForTenant finds all clients for a tenant
func (r *GormClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter crm.ClientFilter) ([]crm.Client, error) {
	var clientModels []models.ClientModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("tenant_id = ?", tenantID),
		filter,
		true,
	)

	if err := query.Find(&clientModels).Error; err != nil {
		return nil, err
	}

	clients := make([]crm.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, nil
}

// CountForTenant counts clients for a tenant
func (r *GormClientRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter crm.ClientFilter) (int64, error) {
	var count int64
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("tenant_id = ?", tenantID),
		filter,
		false,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *crm.Client) error {
	model := models.ClientModelFromDomain(client)
	return r.db.WithContext(ctx).Save(model).Error
}

// Update persists a loaded client with optimistic locking (version check)
func (r *GormClientRepository) Update(ctx context.Context, client *crm.Client) error {
	model := models.ClientModelFromDomain(client)
	result := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("id = ? AND version = ?", client.ID, client.Version-1).
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

// DeleteForTenant soft deletes a client within a tenant
func (r *GormClientRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ClientModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies search, active flag, ordering and optionally pagination
func (r *GormClientRepository) applyFilter(query *gorm.DB, filter crm.ClientFilter, paginate bool) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ClientSortFields, "last_name")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

var _ crm.ClientRepository = (*GormClientRepository)(nil)
