package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringExpenseService manages the fixed-cost definitions that feed the
// materialization engine. Definitions are deactivated rather than deleted so
// already-materialized history stays explicable.
type RecurringExpenseService struct {
	txScope TransactionScope
}

// NewRecurringExpenseService creates a new RecurringExpenseService
func NewRecurringExpenseService(txScope TransactionScope) *RecurringExpenseService {
	return &RecurringExpenseService{txScope: txScope}
}

// CreateRecurringExpenseRequest represents a request to create a recurring expense
type CreateRecurringExpenseRequest struct {
	Name      string          `json:"name" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Frequency string          `json:"frequency" binding:"required,oneof=WEEKLY MONTHLY QUARTERLY SEMIANNUAL ANNUAL"`
	DueDay    int             `json:"due_day" binding:"required,min=1,max=31"`
	StartDate time.Time       `json:"start_date" binding:"required"`
	Category  string          `json:"category" binding:"required"`
}

// UpdateRecurringExpenseRequest represents a request to update a recurring
// expense. Frequency and start date are fixed after creation; changing the
// cadence means deactivating and creating a new definition.
type UpdateRecurringExpenseRequest struct {
	Name     string          `json:"name" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required,dgt0"`
	DueDay   int             `json:"due_day" binding:"required,min=1,max=31"`
	Category string          `json:"category" binding:"required"`
}

// CreateRecurringExpense creates a new recurring expense definition
func (s *RecurringExpenseService) CreateRecurringExpense(ctx context.Context, tenantID, actor uuid.UUID, req CreateRecurringExpenseRequest) (*RecurringExpenseResponse, error) {
	expense, err := ledger.NewRecurringExpense(
		tenantID,
		req.Name,
		valueobject.NewMoneyEUR(req.Amount),
		ledger.Frequency(req.Frequency),
		req.DueDay,
		req.StartDate,
		ledger.EntryCategory(req.Category),
	)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.RecurringExpenseRepo().Save(ctx, expense); err != nil {
			return fmt.Errorf("save recurring expense: %w", err)
		}
		record, err := ledger.NewAuditRecord(tenantID, ledger.EntityTypeRecurringExpense, expense.ID,
			ledger.AuditActionCreate, actor, ledger.ChangeSet{})
		if err != nil {
			return err
		}
		return repos.AuditRepo().Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return toRecurringExpenseResponse(expense), nil
}

// GetRecurringExpense returns a single recurring expense
func (s *RecurringExpenseService) GetRecurringExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (*RecurringExpenseResponse, error) {
	var resp *RecurringExpenseResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		expense, err := repos.RecurringExpenseRepo().FindByIDForTenant(ctx, tenantID, expenseID)
		if err != nil {
			return err
		}
		resp = toRecurringExpenseResponse(expense)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListRecurringExpenses returns a page of the tenant's recurring expenses
func (s *RecurringExpenseService) ListRecurringExpenses(ctx context.Context, tenantID uuid.UUID, filter ledger.RecurringExpenseFilter) (*ListResponse[*RecurringExpenseResponse], error) {
	var expenses []*ledger.RecurringExpense
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		expenses, err = repos.RecurringExpenseRepo().FindAllForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]*RecurringExpenseResponse, len(expenses))
	for n, e := range expenses {
		items[n] = toRecurringExpenseResponse(e)
	}
	return &ListResponse[*RecurringExpenseResponse]{
		Items:    items,
		Total:    int64(len(items)),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// UpdateRecurringExpense changes a definition; periods already materialized
// keep their original amounts.
func (s *RecurringExpenseService) UpdateRecurringExpense(ctx context.Context, tenantID, actor, expenseID uuid.UUID, req UpdateRecurringExpenseRequest) (*RecurringExpenseResponse, error) {
	var resp *RecurringExpenseResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		expense, err := repos.RecurringExpenseRepo().FindByIDForTenant(ctx, tenantID, expenseID)
		if err != nil {
			return err
		}

		before := expenseSnapshot(expense)
		if err := expense.Update(req.Name, valueobject.NewMoneyEUR(req.Amount), req.DueDay, ledger.EntryCategory(req.Category)); err != nil {
			return err
		}
		if err := repos.RecurringExpenseRepo().Update(ctx, expense); err != nil {
			return fmt.Errorf("save recurring expense: %w", err)
		}
		if err := auditUpdate(ctx, repos.AuditRepo(), tenantID, actor,
			ledger.EntityTypeRecurringExpense, expense.ID, before, expenseSnapshot(expense)); err != nil {
			return err
		}
		resp = toRecurringExpenseResponse(expense)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// DeactivateRecurringExpense stops future materialization
func (s *RecurringExpenseService) DeactivateRecurringExpense(ctx context.Context, tenantID, actor, expenseID uuid.UUID) (*RecurringExpenseResponse, error) {
	return s.setActive(ctx, tenantID, actor, expenseID, false)
}

// ActivateRecurringExpense resumes materialization; the next sync backfills
// any gap within its horizon.
func (s *RecurringExpenseService) ActivateRecurringExpense(ctx context.Context, tenantID, actor, expenseID uuid.UUID) (*RecurringExpenseResponse, error) {
	return s.setActive(ctx, tenantID, actor, expenseID, true)
}

func (s *RecurringExpenseService) setActive(ctx context.Context, tenantID, actor, expenseID uuid.UUID, active bool) (*RecurringExpenseResponse, error) {
	var resp *RecurringExpenseResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		expense, err := repos.RecurringExpenseRepo().FindByIDForTenant(ctx, tenantID, expenseID)
		if err != nil {
			return err
		}

		before := expenseSnapshot(expense)
		if active {
			expense.Activate()
		} else {
			expense.Deactivate()
		}
		if err := repos.RecurringExpenseRepo().Update(ctx, expense); err != nil {
			return fmt.Errorf("save recurring expense: %w", err)
		}
		if err := auditUpdate(ctx, repos.AuditRepo(), tenantID, actor,
			ledger.EntityTypeRecurringExpense, expense.ID, before, expenseSnapshot(expense)); err != nil {
			return err
		}
		resp = toRecurringExpenseResponse(expense)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func expenseSnapshot(e *ledger.RecurringExpense) map[string]any {
	return map[string]any{
		"name":     e.Name,
		"amount":   e.Amount.StringFixed(2),
		"due_day":  e.DueDay,
		"category": string(e.Category),
		"active":   e.Active,
	}
}
