package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`

	mutated bool
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion bumps the version once per load-mutate-save cycle. An
// operation may run several mutators on the same loaded aggregate; the
// persisted version must still be exactly one ahead of the version that was
// read, so repositories can guard updates with it.
func (a *BaseAggregateRoot) IncrementVersion() {
	if a.mutated {
		return
	}
	a.Version++
	a.mutated = true
}

// ClearMutated marks the aggregate as freshly loaded so the next mutation
// starts a new version cycle
func (a *BaseAggregateRoot) ClearMutated() {
	a.mutated = false
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// TenantAggregateRoot extends BaseAggregateRoot with multi-tenant support.
// Every top-level business entity belongs to exactly one tenant (trainer).
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		TenantID:          tenantID,
	}
}

// GetTenantID returns the owning tenant ID
func (t *TenantAggregateRoot) GetTenantID() uuid.UUID {
	return t.TenantID
}
