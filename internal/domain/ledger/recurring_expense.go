package ledger

import (
	"strings"
	"time"

	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/fitmanager/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency represents how often a recurring expense occurs
type Frequency string

const (
	FrequencyWeekly     Frequency = "WEEKLY"
	FrequencyMonthly    Frequency = "MONTHLY"
	FrequencyQuarterly  Frequency = "QUARTERLY"
	FrequencySemiannual Frequency = "SEMIANNUAL"
	FrequencyAnnual     Frequency = "ANNUAL"
)

// IsValid checks if the frequency is a valid Frequency
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly,
		FrequencySemiannual, FrequencyAnnual:
		return true
	}
	return false
}

// String returns the string representation of Frequency
func (f Frequency) String() string {
	return string(f)
}

// RecurringExpense represents a fixed expense definition that the
// materialization engine turns into dated ledger entries (aggregate root).
// Deactivating it stops future materialization; entries already generated
// are untouched.
type RecurringExpense struct {
	shared.TenantAggregateRoot
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency Frequency       `json:"frequency"`
	DueDay    int             `json:"due_day"`
	StartDate time.Time       `json:"start_date"`
	Category  EntryCategory   `json:"category"`
	Active    bool            `json:"active"`
}

// NewRecurringExpense creates a new recurring expense definition
func NewRecurringExpense(
	tenantID uuid.UUID,
	name string,
	amount valueobject.Money,
	frequency Frequency,
	dueDay int,
	startDate time.Time,
	category EntryCategory,
) (*RecurringExpense, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Expense name cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", "Unknown frequency")
	}
	if dueDay < 1 || dueDay > 31 {
		return nil, shared.NewDomainError("INVALID_DUE_DAY", "Due day must be between 1 and 31")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category")
	}

	return &RecurringExpense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Amount:              amount.Amount(),
		Frequency:           frequency,
		DueDay:              dueDay,
		StartDate:           startDate,
		Category:            category,
		Active:              true,
	}, nil
}

// Update changes the definition; future materializations pick up the new
// values, already-materialized periods are untouched.
func (r *RecurringExpense) Update(name string, amount valueobject.Money, dueDay int, category EntryCategory) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Expense name cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if dueDay < 1 || dueDay > 31 {
		return shared.NewDomainError("INVALID_DUE_DAY", "Due day must be between 1 and 31")
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category")
	}

	r.Name = strings.TrimSpace(name)
	r.Amount = amount.Amount()
	r.DueDay = dueDay
	r.Category = category
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Deactivate stops future materialization
func (r *RecurringExpense) Deactivate() {
	if !r.Active {
		return
	}
	r.Active = false
	r.Touch()
	r.IncrementVersion()
}

// Activate resumes materialization; skipped periods are backfilled by the
// next sync
func (r *RecurringExpense) Activate() {
	if r.Active {
		return
	}
	r.Active = true
	r.Touch()
	r.IncrementVersion()
}

// StartYearMonth returns the year and month of the expense's start date
func (r *RecurringExpense) StartYearMonth() (int, time.Month) {
	return r.StartDate.Year(), r.StartDate.Month()
}
