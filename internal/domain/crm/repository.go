package crm

import (
	"context"

	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientFilter defines filtering options for client queries
type ClientFilter struct {
	shared.Filter
	Active *bool // Filter by active flag
}

// ClientRepository defines the interface for client persistence.
// All tenant-scoped lookups exclude soft-deleted rows and return
// shared.ErrNotFound for rows owned by a different tenant.
type ClientRepository interface {
	// FindByIDForTenant finds a client by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)

	// FindAllForTenant finds all clients for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ClientFilter) ([]Client, error)

	// CountForTenant counts clients for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ClientFilter) (int64, error)

	// Save creates a client
	Save(ctx context.Context, client *Client) error

	// Update persists a previously loaded client guarded by its version.
	// Returns shared.ErrConcurrencyConflict when the row changed since it
	// was read.
	Update(ctx context.Context, client *Client) error

	// DeleteForTenant soft deletes a client for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
