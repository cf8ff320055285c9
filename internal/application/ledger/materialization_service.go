package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// backfillHorizonMonths bounds how far behind the target month a sync will
// reach when healing gaps. Twelve months covers a full fiscal year of missed
// syncs without turning a single call into an unbounded walk.
const backfillHorizonMonths = 12

// MaterializationService turns recurring expense definitions into dated
// ledger entries. Sync is idempotent: every occurrence is identified by its
// period key, and an occurrence is inserted only when no live entry for that
// key exists. Deleted entries do not block regeneration.
type MaterializationService struct {
	txScope TransactionScope
}

// NewMaterializationService creates a new MaterializationService
func NewMaterializationService(txScope TransactionScope) *MaterializationService {
	return &MaterializationService{txScope: txScope}
}

// Sync materializes all active recurring expenses of the tenant up to and
// including the given month, backfilling any months that earlier syncs
// missed. It returns the number of entries actually created; zero means the
// month was already fully materialized.
func (s *MaterializationService) Sync(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) (int, error) {
	if month < time.January || month > time.December {
		return 0, shared.NewDomainError("INVALID_MONTH", "Month must be between 1 and 12")
	}
	if year < 2000 || year > 2200 {
		return 0, shared.NewDomainError("INVALID_YEAR", "Year out of range")
	}

	created := 0
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		expenses, err := repos.RecurringExpenseRepo().FindActiveForTenant(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("load active recurring expenses: %w", err)
		}

		for _, expense := range expenses {
			n, err := s.materializeExpense(ctx, repos, tenantID, expense, year, month)
			if err != nil {
				return err
			}
			created += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// materializeExpense walks from the later of the expense's start month and
// the backfill horizon through the target month, inserting every missing
// occurrence.
func (s *MaterializationService) materializeExpense(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	expense *ledger.RecurringExpense,
	targetYear int,
	targetMonth time.Month,
) (int, error) {
	cursor := time.Date(expense.StartDate.Year(), expense.StartDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	horizon := time.Date(targetYear, targetMonth, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -backfillHorizonMonths+1, 0)
	if cursor.Before(horizon) {
		cursor = horizon
	}
	end := time.Date(targetYear, targetMonth, 1, 0, 0, 0, 0, time.UTC)

	created := 0
	for !cursor.After(end) {
		for _, occ := range expense.OccurrencesInMonth(cursor.Year(), cursor.Month()) {
			entry, err := ledger.NewRecurringEntry(tenantID, expense, occ)
			if err != nil {
				return 0, err
			}
			inserted, err := repos.LedgerEntryRepo().CreateIfAbsent(ctx, entry)
			if err != nil {
				return 0, fmt.Errorf("materialize %s %s: %w", expense.Name, occ.PeriodKey, err)
			}
			if inserted {
				created++
			}
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return created, nil
}
