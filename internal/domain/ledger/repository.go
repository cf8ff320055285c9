package ledger

import (
	"context"
	"time"

	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractFilter represents filtering options for contract queries
type ContractFilter struct {
	shared.Filter
	ClientID      *uuid.UUID
	PaymentStatus *PaymentStatus
	Closed        *bool
}

// InstallmentFilter represents filtering options for installment queries
type InstallmentFilter struct {
	shared.Filter
	Status  *InstallmentStatus
	DueFrom *time.Time
	DueTo   *time.Time
}

// LedgerEntryFilter represents filtering options for ledger entry queries
type LedgerEntryFilter struct {
	shared.Filter
	Direction *Direction
	Category  *EntryCategory
	Origin    *EntryOrigin
	ClientID  *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// RecurringExpenseFilter represents filtering options for recurring expense queries
type RecurringExpenseFilter struct {
	shared.Filter
	Active *bool
}

// ContractRepository defines the persistence operations for contracts.
// All reads are tenant-scoped: a contract belonging to another tenant is
// indistinguishable from one that does not exist.
type ContractRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Contract, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ContractFilter) ([]*Contract, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ContractFilter) (int64, error)
	FindByClientForTenant(ctx context.Context, tenantID, clientID uuid.UUID) ([]*Contract, error)
	Save(ctx context.Context, contract *Contract) error
	// Update persists a previously loaded contract guarded by its version.
	// Returns shared.ErrConcurrencyConflict when the row changed since it
	// was read.
	Update(ctx context.Context, contract *Contract) error
	SoftDeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// InstallmentRepository defines the persistence operations for installments.
// Installments carry no tenant column of their own; tenant scoping always
// resolves through the owning contract.
type InstallmentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Installment, error)
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]*Installment, error)
	FindDueForTenant(ctx context.Context, tenantID uuid.UUID, filter InstallmentFilter) ([]*Installment, error)
	SumPaidByContract(ctx context.Context, contractID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, installment *Installment) error
	// Update persists a previously loaded installment guarded by its version
	Update(ctx context.Context, installment *Installment) error
	SaveAll(ctx context.Context, installments []*Installment) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// LedgerEntryRepository defines the persistence operations for ledger entries
type LedgerEntryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*LedgerEntry, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter LedgerEntryFilter) ([]*LedgerEntry, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter LedgerEntryFilter) (int64, error)
	FindByInstallment(ctx context.Context, tenantID, installmentID uuid.UUID) ([]*LedgerEntry, error)
	Save(ctx context.Context, entry *LedgerEntry) error
	// CreateIfAbsent inserts the entry unless a live entry already exists for
	// the same (tenant, recurring expense, period key). Returns true when a
	// row was actually inserted.
	CreateIfAbsent(ctx context.Context, entry *LedgerEntry) (bool, error)
	SoftDeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	SoftDeleteByInstallment(ctx context.Context, tenantID, installmentID uuid.UUID) error
	SumByDirectionForTenant(ctx context.Context, tenantID uuid.UUID, direction Direction, from, to time.Time) (decimal.Decimal, error)
}

// RecurringExpenseRepository defines the persistence operations for recurring expenses
type RecurringExpenseRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*RecurringExpense, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter RecurringExpenseFilter) ([]*RecurringExpense, error)
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]*RecurringExpense, error)
	Save(ctx context.Context, expense *RecurringExpense) error
	// Update persists a previously loaded expense guarded by its version
	Update(ctx context.Context, expense *RecurringExpense) error
	SoftDeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// AuditRecordRepository defines the persistence operations for audit records.
// Records are append-only; there is no update or delete.
type AuditRecordRepository interface {
	Create(ctx context.Context, record *AuditRecord) error
	FindByEntityForTenant(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]*AuditRecord, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*AuditRecord, error)
}
