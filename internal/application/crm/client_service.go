package crm

import (
	"context"
	"fmt"
	"time"

	ledgerapp "github.com/fitmanager/backend/internal/application/ledger"
	"github.com/fitmanager/backend/internal/domain/crm"
	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/google/uuid"
)

// ClientService provides application-level client operations. Mutations run
// through the shared transaction scope so their audit records commit with
// them.
type ClientService struct {
	txScope ledgerapp.TransactionScope
}

// NewClientService creates a new ClientService
func NewClientService(txScope ledgerapp.TransactionScope) *ClientService {
	return &ClientService{txScope: txScope}
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	FirstName string     `json:"first_name" binding:"required"`
	LastName  string     `json:"last_name" binding:"required"`
	Email     string     `json:"email" binding:"omitempty,email"`
	Phone     string     `json:"phone"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     string     `json:"notes"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	FirstName string     `json:"first_name" binding:"required"`
	LastName  string     `json:"last_name" binding:"required"`
	Email     string     `json:"email" binding:"omitempty,email"`
	Phone     string     `json:"phone"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     string     `json:"notes"`
}

// ClientListResponse wraps a page of clients with the total count
type ClientListResponse struct {
	Items    []*ClientResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, tenantID, actor uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	client, err := crm.NewClient(tenantID, req.FirstName, req.LastName, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	client.BirthDate = req.BirthDate
	if req.Notes != "" {
		client.SetNotes(req.Notes)
	}

	err = s.txScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		if err := repos.ClientRepo().Save(ctx, client); err != nil {
			return fmt.Errorf("save client: %w", err)
		}
		record, err := ledger.NewAuditRecord(tenantID, ledger.EntityTypeClient, client.ID,
			ledger.AuditActionCreate, actor, ledger.ChangeSet{})
		if err != nil {
			return err
		}
		return repos.AuditRepo().Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// GetClient returns a single client
func (s *ClientService) GetClient(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	var resp *ClientResponse
	err := s.txScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		client, err := repos.ClientRepo().FindByIDForTenant(ctx, tenantID, clientID)
		if err != nil {
			return err
		}
		resp = toClientResponse(client)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListClients returns a filtered page of the tenant's clients
func (s *ClientService) ListClients(ctx context.Context, tenantID uuid.UUID, filter crm.ClientFilter) (*ClientListResponse, error) {
	var clients []crm.Client
	var total int64
	err := s.txScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		var err error
		clients, err = repos.ClientRepo().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err = repos.ClientRepo().CountForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]*ClientResponse, len(clients))
	for n := range clients {
		items[n] = toClientResponse(&clients[n])
	}
	return &ClientListResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// UpdateClient updates a client's details
func (s *ClientService) UpdateClient(ctx context.Context, tenantID, actor, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	return s.mutate(ctx, tenantID, actor, clientID, func(client *crm.Client) error {
		if err := client.Rename(req.FirstName, req.LastName); err != nil {
			return err
		}
		client.UpdateContact(req.Email, req.Phone)
		client.BirthDate = req.BirthDate
		client.SetNotes(req.Notes)
		return nil
	})
}

// DeactivateClient marks a client inactive without deleting it
func (s *ClientService) DeactivateClient(ctx context.Context, tenantID, actor, clientID uuid.UUID) (*ClientResponse, error) {
	return s.mutate(ctx, tenantID, actor, clientID, func(client *crm.Client) error {
		client.Deactivate()
		return nil
	})
}

// ActivateClient marks a client active again
func (s *ClientService) ActivateClient(ctx context.Context, tenantID, actor, clientID uuid.UUID) (*ClientResponse, error) {
	return s.mutate(ctx, tenantID, actor, clientID, func(client *crm.Client) error {
		client.Activate()
		return nil
	})
}

// DeleteClient soft-deletes a client. Contracts referencing the client are
// untouched; historical ledger entries keep their client link.
func (s *ClientService) DeleteClient(ctx context.Context, tenantID, actor, clientID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		client, err := repos.ClientRepo().FindByIDForTenant(ctx, tenantID, clientID)
		if err != nil {
			return err
		}
		if err := repos.ClientRepo().DeleteForTenant(ctx, tenantID, client.ID); err != nil {
			return err
		}
		record, err := ledger.NewAuditRecord(tenantID, ledger.EntityTypeClient, client.ID,
			ledger.AuditActionDelete, actor, ledger.ChangeSet{})
		if err != nil {
			return err
		}
		return repos.AuditRepo().Create(ctx, record)
	})
}

func (s *ClientService) mutate(ctx context.Context, tenantID, actor, clientID uuid.UUID, fn func(*crm.Client) error) (*ClientResponse, error) {
	var resp *ClientResponse
	err := s.txScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		client, err := repos.ClientRepo().FindByIDForTenant(ctx, tenantID, clientID)
		if err != nil {
			return err
		}

		before := clientSnapshot(client)
		if err := fn(client); err != nil {
			return err
		}
		if err := repos.ClientRepo().Update(ctx, client); err != nil {
			return fmt.Errorf("save client: %w", err)
		}

		record, err := ledger.NewAuditRecord(tenantID, ledger.EntityTypeClient, client.ID,
			ledger.AuditActionUpdate, actor, ledger.Diff(before, clientSnapshot(client)))
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Create(ctx, record); err != nil {
			return err
		}
		resp = toClientResponse(client)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func clientSnapshot(c *crm.Client) map[string]any {
	return map[string]any{
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"email":      c.Email,
		"phone":      c.Phone,
		"notes":      c.Notes,
		"active":     c.Active,
	}
}

func toClientResponse(c *crm.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		TenantID:  c.TenantID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		FullName:  c.FullName(),
		Email:     c.Email,
		Phone:     c.Phone,
		BirthDate: c.BirthDate,
		Notes:     c.Notes,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}
