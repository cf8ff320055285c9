package ledger

import (
	"time"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	ClientID       uuid.UUID       `json:"client_id"`
	Title          string          `json:"title"`
	PriceTotal     decimal.Decimal `json:"price_total"`
	DownPayment    decimal.Decimal `json:"down_payment"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	Residual       decimal.Decimal `json:"residual"`
	PaymentStatus  string          `json:"payment_status"`
	Closed         bool            `json:"closed"`
	CreditsTotal   int             `json:"credits_total"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID         uuid.UUID       `json:"id"`
	ContractID uuid.UUID       `json:"contract_id"`
	DueDate    time.Time       `json:"due_date"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Residual   decimal.Decimal `json:"residual"`
	Status     string          `json:"status"`
	Method     *string         `json:"method,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	Direction          string          `json:"direction"`
	Amount             decimal.Decimal `json:"amount"`
	EffectiveDate      time.Time       `json:"effective_date"`
	Category           string          `json:"category"`
	Description        string          `json:"description"`
	ClientID           *uuid.UUID      `json:"client_id,omitempty"`
	ContractID         *uuid.UUID      `json:"contract_id,omitempty"`
	InstallmentID      *uuid.UUID      `json:"installment_id,omitempty"`
	RecurringExpenseID *uuid.UUID      `json:"recurring_expense_id,omitempty"`
	PeriodKey          string          `json:"period_key,omitempty"`
	Origin             string          `json:"origin"`
	Method             *string         `json:"method,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// RecurringExpenseResponse represents a recurring expense in API responses
type RecurringExpenseResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency string          `json:"frequency"`
	DueDay    int             `json:"due_day"`
	StartDate time.Time       `json:"start_date"`
	Category  string          `json:"category"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

// MonthlySummaryResponse aggregates the cash flow of one month
type MonthlySummaryResponse struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	TotalIn  decimal.Decimal `json:"total_in"`
	TotalOut decimal.Decimal `json:"total_out"`
	Net      decimal.Decimal `json:"net"`
}

// AuditRecordResponse represents an audit record in API responses
type AuditRecordResponse struct {
	ID         uuid.UUID        `json:"id"`
	EntityType string           `json:"entity_type"`
	EntityID   uuid.UUID        `json:"entity_id"`
	Action     string           `json:"action"`
	Changes    ledger.ChangeSet `json:"changes,omitempty"`
	Actor      uuid.UUID        `json:"actor"`
	CreatedAt  time.Time        `json:"created_at"`
}

// ListResponse wraps a page of results with the total count
type ListResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func toContractResponse(c *ledger.Contract) *ContractResponse {
	return &ContractResponse{
		ID:             c.ID,
		TenantID:       c.TenantID,
		ClientID:       c.ClientID,
		Title:          c.Title,
		PriceTotal:     c.PriceTotal,
		DownPayment:    c.DownPayment,
		TotalCollected: c.TotalCollected,
		Residual:       c.Residual(),
		PaymentStatus:  c.PaymentStatus.String(),
		Closed:         c.Closed,
		CreditsTotal:   c.CreditsTotal,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

func toInstallmentResponse(i *ledger.Installment) *InstallmentResponse {
	resp := &InstallmentResponse{
		ID:         i.ID,
		ContractID: i.ContractID,
		DueDate:    i.DueDate,
		AmountDue:  i.AmountDue,
		AmountPaid: i.AmountPaid,
		Residual:   i.Residual(),
		Status:     i.Status.String(),
		PaidAt:     i.PaidAt,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
	if i.Method != nil {
		m := string(*i.Method)
		resp.Method = &m
	}
	return resp
}

func toLedgerEntryResponse(e *ledger.LedgerEntry) *LedgerEntryResponse {
	resp := &LedgerEntryResponse{
		ID:                 e.ID,
		TenantID:           e.TenantID,
		Direction:          e.Direction.String(),
		Amount:             e.Amount,
		EffectiveDate:      e.EffectiveDate,
		Category:           string(e.Category),
		Description:        e.Description,
		ClientID:           e.ClientID,
		ContractID:         e.ContractID,
		InstallmentID:      e.InstallmentID,
		RecurringExpenseID: e.RecurringExpenseID,
		PeriodKey:          e.PeriodKey,
		Origin:             string(e.Origin),
		CreatedAt:          e.CreatedAt,
	}
	if e.Method != nil {
		m := string(*e.Method)
		resp.Method = &m
	}
	return resp
}

func toRecurringExpenseResponse(r *ledger.RecurringExpense) *RecurringExpenseResponse {
	return &RecurringExpenseResponse{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Name:      r.Name,
		Amount:    r.Amount,
		Frequency: r.Frequency.String(),
		DueDay:    r.DueDay,
		StartDate: r.StartDate,
		Category:  string(r.Category),
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}

func toAuditRecordResponse(a *ledger.AuditRecord) *AuditRecordResponse {
	return &AuditRecordResponse{
		ID:         a.ID,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Action:     string(a.Action),
		Changes:    a.Changes,
		Actor:      a.Actor,
		CreatedAt:  a.CreatedAt,
	}
}
