package crm

import (
	"strings"
	"time"

	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Client represents a trainer's client (aggregate root).
// A client belongs directly to exactly one tenant.
type Client struct {
	shared.TenantAggregateRoot
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Active    bool       `json:"active"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// NewClient creates a new client for a tenant
func NewClient(tenantID uuid.UUID, firstName, lastName, email, phone string) (*Client, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(firstName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Last name cannot be empty")
	}

	return &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FirstName:           strings.TrimSpace(firstName),
		LastName:            strings.TrimSpace(lastName),
		Email:               strings.TrimSpace(email),
		Phone:               strings.TrimSpace(phone),
		Active:              true,
	}, nil
}

// FullName returns the client's display name
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// UpdateContact updates the client's contact information
func (c *Client) UpdateContact(email, phone string) {
	c.Email = strings.TrimSpace(email)
	c.Phone = strings.TrimSpace(phone)
	c.Touch()
	c.IncrementVersion()
}

// Rename updates the client's name
func (c *Client) Rename(firstName, lastName string) error {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	c.FirstName = strings.TrimSpace(firstName)
	c.LastName = strings.TrimSpace(lastName)
	c.Touch()
	c.IncrementVersion()
	return nil
}

// SetNotes sets free-form notes
func (c *Client) SetNotes(notes string) {
	c.Notes = notes
	c.Touch()
	c.IncrementVersion()
}

// Deactivate marks the client as inactive without deleting it
func (c *Client) Deactivate() {
	c.Active = false
	c.Touch()
	c.IncrementVersion()
}

// Activate marks the client as active
func (c *Client) Activate() {
	c.Active = true
	c.Touch()
	c.IncrementVersion()
}

// IsDeleted returns true if the client has been soft-deleted
func (c *Client) IsDeleted() bool {
	return c.DeletedAt != nil
}
