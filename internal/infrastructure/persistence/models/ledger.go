package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fitmanager/backend/internal/domain/ledger"
)

// ContractModel is the persistence model for the Contract aggregate.
type ContractModel struct {
	TenantAggregateModel
	ClientID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	Title          string               `gorm:"type:varchar(200);not null"`
	PriceTotal     decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	DownPayment    decimal.Decimal      `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCollected decimal.Decimal      `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentStatus  ledger.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Closed         bool                 `gorm:"not null;default:false"`
	CreditsTotal   int                  `gorm:"not null;default:0"`
	StartDate      time.Time            `gorm:"type:date;not null"`
	EndDate        *time.Time           `gorm:"type:date"`
	Notes          string               `gorm:"type:text"`
	DeletedAt      gorm.DeletedAt       `gorm:"index"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract aggregate.
func (m *ContractModel) ToDomain() *ledger.Contract {
	c := &ledger.Contract{
		ClientID:       m.ClientID,
		Title:          m.Title,
		PriceTotal:     m.PriceTotal,
		DownPayment:    m.DownPayment,
		TotalCollected: m.TotalCollected,
		PaymentStatus:  m.PaymentStatus,
		Closed:         m.Closed,
		CreditsTotal:   m.CreditsTotal,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Notes:          m.Notes,
		DeletedAt:      deletedAtPtr(m.DeletedAt),
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Contract aggregate.
func (m *ContractModel) FromDomain(c *ledger.Contract) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.ClientID = c.ClientID
	m.Title = c.Title
	m.PriceTotal = c.PriceTotal
	m.DownPayment = c.DownPayment
	m.TotalCollected = c.TotalCollected
	m.PaymentStatus = c.PaymentStatus
	m.Closed = c.Closed
	m.CreditsTotal = c.CreditsTotal
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.Notes = c.Notes
	m.DeletedAt = deletedAtValue(c.DeletedAt)
}

// ContractModelFromDomain creates a new persistence model from a domain Contract.
func ContractModelFromDomain(c *ledger.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}

// InstallmentModel is the persistence model for the Installment aggregate.
// It deliberately carries no tenant column: ownership resolves through the
// parent contract.
type InstallmentModel struct {
	AggregateModel
	ContractID uuid.UUID                `gorm:"type:uuid;not null;index"`
	DueDate    time.Time                `gorm:"type:date;not null;index"`
	AmountDue  decimal.Decimal          `gorm:"type:decimal(12,2);not null"`
	AmountPaid decimal.Decimal          `gorm:"type:decimal(12,2);not null;default:0"`
	Status     ledger.InstallmentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Method     *ledger.PaymentMethod    `gorm:"type:varchar(20)"`
	PaidAt     *time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment aggregate.
func (m *InstallmentModel) ToDomain() *ledger.Installment {
	i := &ledger.Installment{
		ContractID: m.ContractID,
		DueDate:    m.DueDate,
		AmountDue:  m.AmountDue,
		AmountPaid: m.AmountPaid,
		Status:     m.Status,
		Method:     m.Method,
		PaidAt:     m.PaidAt,
		DeletedAt:  deletedAtPtr(m.DeletedAt),
	}
	m.PopulateAggregateRoot(&i.BaseAggregateRoot)
	return i
}

// FromDomain populates the persistence model from a domain Installment.
func (m *InstallmentModel) FromDomain(i *ledger.Installment) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.ContractID = i.ContractID
	m.DueDate = i.DueDate
	m.AmountDue = i.AmountDue
	m.AmountPaid = i.AmountPaid
	m.Status = i.Status
	m.Method = i.Method
	m.PaidAt = i.PaidAt
	m.DeletedAt = deletedAtValue(i.DeletedAt)
}

// InstallmentModelFromDomain creates a new persistence model from a domain Installment.
func InstallmentModelFromDomain(i *ledger.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(i)
	return m
}

// LedgerEntryModel is the persistence model for the LedgerEntry aggregate.
// The partial unique index over (tenant_id, recurring_expense_id, period_key)
// backs idempotent materialization of recurring expenses.
type LedgerEntryModel struct {
	TenantAggregateModel
	Direction          ledger.Direction      `gorm:"type:varchar(5);not null;index"`
	Amount             decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	EffectiveDate      time.Time             `gorm:"type:date;not null;index"`
	Category           ledger.EntryCategory  `gorm:"type:varchar(30);not null;index"`
	Description        string                `gorm:"type:text"`
	ClientID           *uuid.UUID            `gorm:"type:uuid;index"`
	ContractID         *uuid.UUID            `gorm:"type:uuid;index"`
	InstallmentID      *uuid.UUID            `gorm:"type:uuid;index"`
	RecurringExpenseID *uuid.UUID            `gorm:"type:uuid;uniqueIndex:idx_entries_materialization,priority:2,where:deleted_at IS NULL"`
	PeriodKey          string                `gorm:"type:varchar(12);uniqueIndex:idx_entries_materialization,priority:3,where:deleted_at IS NULL"`
	Origin             ledger.EntryOrigin    `gorm:"type:varchar(10);not null"`
	Method             *ledger.PaymentMethod `gorm:"type:varchar(20)"`
	DeletedAt          gorm.DeletedAt        `gorm:"index"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry aggregate.
func (m *LedgerEntryModel) ToDomain() *ledger.LedgerEntry {
	e := &ledger.LedgerEntry{
		Direction:          m.Direction,
		Amount:             m.Amount,
		EffectiveDate:      m.EffectiveDate,
		Category:           m.Category,
		Description:        m.Description,
		ClientID:           m.ClientID,
		ContractID:         m.ContractID,
		InstallmentID:      m.InstallmentID,
		RecurringExpenseID: m.RecurringExpenseID,
		PeriodKey:          m.PeriodKey,
		Origin:             m.Origin,
		Method:             m.Method,
		DeletedAt:          deletedAtPtr(m.DeletedAt),
	}
	m.PopulateTenantAggregateRoot(&e.TenantAggregateRoot)
	return e
}

// FromDomain populates the persistence model from a domain LedgerEntry.
func (m *LedgerEntryModel) FromDomain(e *ledger.LedgerEntry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.Direction = e.Direction
	m.Amount = e.Amount
	m.EffectiveDate = e.EffectiveDate
	m.Category = e.Category
	m.Description = e.Description
	m.ClientID = e.ClientID
	m.ContractID = e.ContractID
	m.InstallmentID = e.InstallmentID
	m.RecurringExpenseID = e.RecurringExpenseID
	m.PeriodKey = e.PeriodKey
	m.Origin = e.Origin
	m.Method = e.Method
	m.DeletedAt = deletedAtValue(e.DeletedAt)
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry.
func LedgerEntryModelFromDomain(e *ledger.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}

// RecurringExpenseModel is the persistence model for the RecurringExpense aggregate.
type RecurringExpenseModel struct {
	TenantAggregateModel
	Name      string               `gorm:"type:varchar(200);not null"`
	Amount    decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	Frequency ledger.Frequency     `gorm:"type:varchar(12);not null"`
	DueDay    int                  `gorm:"not null"`
	StartDate time.Time            `gorm:"type:date;not null"`
	Category  ledger.EntryCategory `gorm:"type:varchar(30);not null"`
	Active    bool                 `gorm:"not null;default:true;index"`
	DeletedAt gorm.DeletedAt       `gorm:"index"`
}

// TableName returns the table name for GORM
func (RecurringExpenseModel) TableName() string {
	return "recurring_expenses"
}

// ToDomain converts the persistence model to a domain RecurringExpense aggregate.
func (m *RecurringExpenseModel) ToDomain() *ledger.RecurringExpense {
	r := &ledger.RecurringExpense{
		Name:      m.Name,
		Amount:    m.Amount,
		Frequency: m.Frequency,
		DueDay:    m.DueDay,
		StartDate: m.StartDate,
		Category:  m.Category,
		Active:    m.Active,
	}
	m.PopulateTenantAggregateRoot(&r.TenantAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain RecurringExpense.
func (m *RecurringExpenseModel) FromDomain(r *ledger.RecurringExpense) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Name = r.Name
	m.Amount = r.Amount
	m.Frequency = r.Frequency
	m.DueDay = r.DueDay
	m.StartDate = r.StartDate
	m.Category = r.Category
	m.Active = r.Active
}

// RecurringExpenseModelFromDomain creates a new persistence model from a domain RecurringExpense.
func RecurringExpenseModelFromDomain(r *ledger.RecurringExpense) *RecurringExpenseModel {
	m := &RecurringExpenseModel{}
	m.FromDomain(r)
	return m
}

// AuditRecordModel is the persistence model for audit records. Rows are
// append-only and never soft-deleted.
type AuditRecordModel struct {
	BaseModel
	TenantID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	EntityType string             `gorm:"type:varchar(50);not null;index:idx_audit_entity,priority:1"`
	EntityID   uuid.UUID          `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2"`
	Action     ledger.AuditAction `gorm:"type:varchar(10);not null"`
	Changes    ledger.ChangeSet   `gorm:"type:jsonb"`
	Actor      uuid.UUID          `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (AuditRecordModel) TableName() string {
	return "audit_records"
}

// ToDomain converts the persistence model to a domain AuditRecord.
func (m *AuditRecordModel) ToDomain() *ledger.AuditRecord {
	return &ledger.AuditRecord{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Action:     m.Action,
		Changes:    m.Changes,
		Actor:      m.Actor,
	}
}

// FromDomain populates the persistence model from a domain AuditRecord.
func (m *AuditRecordModel) FromDomain(r *ledger.AuditRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.EntityType = r.EntityType
	m.EntityID = r.EntityID
	m.Action = r.Action
	m.Changes = r.Changes
	m.Actor = r.Actor
}

// AuditRecordModelFromDomain creates a new persistence model from a domain AuditRecord.
func AuditRecordModelFromDomain(r *ledger.AuditRecord) *AuditRecordModel {
	m := &AuditRecordModel{}
	m.FromDomain(r)
	return m
}

// Training session statuses that consume a contract credit.
const (
	SessionStatusScheduled = "SCHEDULED"
	SessionStatusCompleted = "COMPLETED"
	SessionStatusNoShow    = "NO_SHOW"
	SessionStatusCancelled = "CANCELLED"
)

// TrainingSessionModel is a read model over the scheduling subsystem's
// sessions table. The ledger only counts consumed credits from it.
type TrainingSessionModel struct {
	BaseModel
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	ClientID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	ContractID  *uuid.UUID     `gorm:"type:uuid;index"`
	Status      string         `gorm:"type:varchar(20);not null"`
	ScheduledAt time.Time      `gorm:"not null"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (TrainingSessionModel) TableName() string {
	return "training_sessions"
}
