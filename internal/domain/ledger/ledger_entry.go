package ledger

import (
	"strings"
	"time"

	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction represents the direction of a cash movement
type Direction string

const (
	DirectionIn  Direction = "IN"  // Money received
	DirectionOut Direction = "OUT" // Money spent
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// EntryOrigin distinguishes user-created entries from engine-created ones
type EntryOrigin string

const (
	OriginManual EntryOrigin = "MANUAL" // Free-form entry created by the trainer
	OriginSystem EntryOrigin = "SYSTEM" // Created by the payment or materialization engine
)

// IsValid checks if the origin is valid
func (o EntryOrigin) IsValid() bool {
	return o == OriginManual || o == OriginSystem
}

// EntryCategory classifies a cash movement
type EntryCategory string

const (
	CategoryContractPayment  EntryCategory = "CONTRACT_PAYMENT"
	CategoryRecurringExpense EntryCategory = "RECURRING_EXPENSE"
	CategoryEquipment        EntryCategory = "EQUIPMENT"
	CategoryRent             EntryCategory = "RENT"
	CategoryInsurance        EntryCategory = "INSURANCE"
	CategoryTravel           EntryCategory = "TRAVEL"
	CategoryOther            EntryCategory = "OTHER"
)

// IsValid checks if the category is a known EntryCategory
func (c EntryCategory) IsValid() bool {
	switch c {
	case CategoryContractPayment, CategoryRecurringExpense, CategoryEquipment,
		CategoryRent, CategoryInsurance, CategoryTravel, CategoryOther:
		return true
	}
	return false
}

// LedgerEntry represents one recorded flow of money (aggregate root).
// Entries are never hard-deleted: a reversal is modeled as a soft delete,
// plus a corrective entry where applicable.
type LedgerEntry struct {
	shared.TenantAggregateRoot
	Direction          Direction       `json:"direction"`
	Amount             decimal.Decimal `json:"amount"`
	EffectiveDate      time.Time       `json:"effective_date"`
	Category           EntryCategory   `json:"category"`
	Description        string          `json:"description"`
	ClientID           *uuid.UUID      `json:"client_id,omitempty"`
	ContractID         *uuid.UUID      `json:"contract_id,omitempty"`
	InstallmentID      *uuid.UUID      `json:"installment_id,omitempty"`
	RecurringExpenseID *uuid.UUID      `json:"recurring_expense_id,omitempty"`
	PeriodKey          string          `json:"period_key,omitempty"` // Billing occurrence, e.g. "2026-03" or "2026-03-W2"
	Origin             EntryOrigin     `json:"origin"`
	Method             *PaymentMethod  `json:"method,omitempty"`
	DeletedAt          *time.Time      `json:"deleted_at,omitempty"`
}

// NewPaymentEntry creates the incoming ledger entry recorded by the payment
// engine for an installment payment.
func NewPaymentEntry(
	tenantID uuid.UUID,
	clientID, contractID, installmentID uuid.UUID,
	amount decimal.Decimal,
	effectiveDate time.Time,
	method PaymentMethod,
	description string,
) (*LedgerEntry, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Entry amount must be positive")
	}
	if contractID == uuid.Nil || installmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LINK", "Payment entries must link a contract and an installment")
	}

	e := &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Direction:           DirectionIn,
		Amount:              amount,
		EffectiveDate:       effectiveDate,
		Category:            CategoryContractPayment,
		Description:         description,
		ContractID:          &contractID,
		InstallmentID:       &installmentID,
		Origin:              OriginSystem,
		Method:              &method,
	}
	if clientID != uuid.Nil {
		e.ClientID = &clientID
	}
	return e, nil
}

// NewDownPaymentEntry creates the incoming ledger entry recorded when a
// contract is sold with an up-front payment. It links the contract but no
// installment.
func NewDownPaymentEntry(
	tenantID uuid.UUID,
	clientID, contractID uuid.UUID,
	amount decimal.Decimal,
	effectiveDate time.Time,
	method PaymentMethod,
	description string,
) (*LedgerEntry, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Entry amount must be positive")
	}
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LINK", "Down payment entries must link a contract")
	}

	e := &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Direction:           DirectionIn,
		Amount:              amount,
		EffectiveDate:       effectiveDate,
		Category:            CategoryContractPayment,
		Description:         description,
		ContractID:          &contractID,
		Origin:              OriginSystem,
		Method:              &method,
	}
	if clientID != uuid.Nil {
		e.ClientID = &clientID
	}
	return e, nil
}

// NewRecurringEntry creates the outgoing ledger entry materialized for one
// occurrence of a recurring expense.
func NewRecurringEntry(
	tenantID uuid.UUID,
	expense *RecurringExpense,
	occurrence Occurrence,
) (*LedgerEntry, error) {
	if expense == nil {
		return nil, shared.NewDomainError("INVALID_EXPENSE", "Recurring expense is required")
	}
	if occurrence.PeriodKey == "" {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Occurrence period key is required")
	}

	expenseID := expense.ID
	return &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Direction:           DirectionOut,
		Amount:              expense.Amount,
		EffectiveDate:       occurrence.Date,
		Category:            CategoryRecurringExpense,
		Description:         expense.Name,
		RecurringExpenseID:  &expenseID,
		PeriodKey:           occurrence.PeriodKey,
		Origin:              OriginSystem,
	}, nil
}

// NewManualEntry creates a free-form entry recorded directly by the trainer.
// Manual entries may never carry contract, installment, or recurring-expense
// links; those are reserved for engine-written entries.
func NewManualEntry(
	tenantID uuid.UUID,
	direction Direction,
	amount decimal.Decimal,
	effectiveDate time.Time,
	category EntryCategory,
	description string,
	clientID *uuid.UUID,
) (*LedgerEntry, error) {
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Direction must be IN or OUT")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Entry amount must be positive")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown entry category")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Entry description cannot be empty")
	}

	return &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Direction:           direction,
		Amount:              amount,
		EffectiveDate:       effectiveDate,
		Category:            category,
		Description:         strings.TrimSpace(description),
		ClientID:            clientID,
		Origin:              OriginManual,
	}, nil
}

// IsDeleted returns true if the entry has been soft-deleted (reversed)
func (e *LedgerEntry) IsDeleted() bool {
	return e.DeletedAt != nil
}

// IsLinked returns true if the entry references a contract, installment,
// or recurring expense
func (e *LedgerEntry) IsLinked() bool {
	return e.ContractID != nil || e.InstallmentID != nil || e.RecurringExpenseID != nil
}
