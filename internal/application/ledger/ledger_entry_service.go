package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryService provides manual cash-movement bookkeeping and ledger
// queries. Engine-written entries (payments, materializations) are created
// by their own services; this one only ever writes MANUAL entries.
type LedgerEntryService struct {
	txScope      TransactionScope
	materializer *MaterializationService
}

// NewLedgerEntryService creates a new LedgerEntryService
func NewLedgerEntryService(txScope TransactionScope, materializer *MaterializationService) *LedgerEntryService {
	return &LedgerEntryService{txScope: txScope, materializer: materializer}
}

// CreateManualEntryRequest represents a request to record a manual entry
type CreateManualEntryRequest struct {
	Direction     string          `json:"direction" binding:"required,oneof=IN OUT"`
	Amount        decimal.Decimal `json:"amount" binding:"required,dgt0"`
	EffectiveDate time.Time       `json:"effective_date" binding:"required"`
	Category      string          `json:"category" binding:"required"`
	Description   string          `json:"description" binding:"required"`
	ClientID      *uuid.UUID      `json:"client_id"`
}

// CreateManualEntry records a free-form cash movement. Manual entries can
// reference a client but never a contract, installment, or recurring
// expense; those links belong to engine-written entries.
func (s *LedgerEntryService) CreateManualEntry(ctx context.Context, tenantID, actor uuid.UUID, req CreateManualEntryRequest) (*LedgerEntryResponse, error) {
	category := ledger.EntryCategory(req.Category)
	if category == ledger.CategoryContractPayment || category == ledger.CategoryRecurringExpense {
		return nil, shared.NewDomainError("INVALID_INPUT", "Category is reserved for system entries")
	}

	entry, err := ledger.NewManualEntry(
		tenantID,
		ledger.Direction(req.Direction),
		req.Amount,
		req.EffectiveDate,
		category,
		req.Description,
		req.ClientID,
	)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.LedgerEntryRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("save ledger entry: %w", err)
		}
		record, err := ledger.NewAuditRecord(tenantID, ledger.EntityTypeLedgerEntry, entry.ID,
			ledger.AuditActionCreate, actor, ledger.ChangeSet{})
		if err != nil {
			return err
		}
		return repos.AuditRepo().Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return toLedgerEntryResponse(entry), nil
}

// GetEntry returns a single ledger entry
func (s *LedgerEntryService) GetEntry(ctx context.Context, tenantID, entryID uuid.UUID) (*LedgerEntryResponse, error) {
	var resp *LedgerEntryResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.LedgerEntryRepo().FindByIDForTenant(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		resp = toLedgerEntryResponse(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListEntries returns a filtered page of the tenant's ledger
func (s *LedgerEntryService) ListEntries(ctx context.Context, tenantID uuid.UUID, filter ledger.LedgerEntryFilter) (*ListResponse[*LedgerEntryResponse], error) {
	var (
		entries []*ledger.LedgerEntry
		total   int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entries, err = repos.LedgerEntryRepo().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err = repos.LedgerEntryRepo().CountForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]*LedgerEntryResponse, len(entries))
	for n, e := range entries {
		items[n] = toLedgerEntryResponse(e)
	}
	return &ListResponse[*LedgerEntryResponse]{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// MonthlySummary sums the incoming and outgoing flow of one calendar month.
// Materialization runs first so the summary always reflects the recurring
// expenses due in the requested month, even when no scheduled sync has
// covered it yet. Sync is idempotent, so the extra call is safe.
func (s *LedgerEntryService) MonthlySummary(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) (*MonthlySummaryResponse, error) {
	if month < time.January || month > time.December {
		return nil, shared.NewDomainError("INVALID_MONTH", "Month must be between 1 and 12")
	}

	if _, err := s.materializer.Sync(ctx, tenantID, year, month); err != nil {
		return nil, fmt.Errorf("materialize recurring expenses: %w", err)
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var totalIn, totalOut decimal.Decimal
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		totalIn, err = repos.LedgerEntryRepo().SumByDirectionForTenant(ctx, tenantID, ledger.DirectionIn, from, to)
		if err != nil {
			return err
		}
		totalOut, err = repos.LedgerEntryRepo().SumByDirectionForTenant(ctx, tenantID, ledger.DirectionOut, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &MonthlySummaryResponse{
		Year:     year,
		Month:    int(month),
		TotalIn:  totalIn,
		TotalOut: totalOut,
		Net:      totalIn.Sub(totalOut),
	}, nil
}

// DeleteEntry soft-deletes a ledger entry. Deleting a materialized entry
// frees its period key, so the next sync will regenerate it unless the
// expense has been deactivated.
func (s *LedgerEntryService) DeleteEntry(ctx context.Context, tenantID, actor, entryID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.LedgerEntryRepo().FindByIDForTenant(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if entry.InstallmentID != nil {
			return shared.NewDomainError(shared.CodeInvalidState,
				"Payment entries are reversed by unpaying the installment")
		}
		if err := repos.LedgerEntryRepo().SoftDeleteForTenant(ctx, tenantID, entry.ID); err != nil {
			return fmt.Errorf("delete ledger entry: %w", err)
		}

		record, err := ledger.NewAuditRecord(tenantID, ledger.EntityTypeLedgerEntry, entry.ID,
			ledger.AuditActionDelete, actor, ledger.ChangeSet{})
		if err != nil {
			return err
		}
		return repos.AuditRepo().Create(ctx, record)
	})
}
