package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedExpense(t *testing.T, fx *ledgerFixture, tenantID uuid.UUID, freq ledger.Frequency, dueDay int, start time.Time) *ledger.RecurringExpense {
	expense, err := ledger.NewRecurringExpense(
		tenantID, "Studio rent",
		valueobject.NewMoneyEURFromFloat(850.00),
		freq, dueDay, start, ledger.CategoryRent,
	)
	require.NoError(t, err)
	require.NoError(t, fx.expenses.Save(context.Background(), expense))
	return expense
}

func tenantEntries(fx *ledgerFixture, tenantID uuid.UUID) []*ledger.LedgerEntry {
	entries, _ := fx.entries.FindAllForTenant(context.Background(), tenantID, ledger.LedgerEntryFilter{})
	return entries
}

func TestMaterializationService_Sync_CurrentMonth(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	seedExpense(t, fx, tenantID, ledger.FrequencyMonthly, 15, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := NewMaterializationService(fx.scope)

	created, err := svc.Sync(context.Background(), tenantID, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	entries := tenantEntries(fx, tenantID)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.DirectionOut, entries[0].Direction)
	assert.Equal(t, ledger.CategoryRecurringExpense, entries[0].Category)
	assert.Equal(t, ledger.OriginSystem, entries[0].Origin)
	assert.Equal(t, "2026-03", entries[0].PeriodKey)
	assert.Equal(t, 15, entries[0].EffectiveDate.Day())
}

func TestMaterializationService_Sync_Idempotent(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	seedExpense(t, fx, tenantID, ledger.FrequencyMonthly, 15, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := NewMaterializationService(fx.scope)

	created, err := svc.Sync(context.Background(), tenantID, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	created, err = svc.Sync(context.Background(), tenantID, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, tenantEntries(fx, tenantID), 3)
}

func TestMaterializationService_Sync_BackfillsFullYear(t *testing.T) {
	// An expense created in March 2025 that was never synced: a sync for
	// February 2026 heals the whole gap in one call.
	fx := newLedgerFixture()
	tenantID := uuid.New()
	seedExpense(t, fx, tenantID, ledger.FrequencyMonthly, 5, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	svc := NewMaterializationService(fx.scope)

	created, err := svc.Sync(context.Background(), tenantID, 2026, time.February)
	require.NoError(t, err)
	assert.Equal(t, 12, created)

	keys := make(map[string]bool)
	for _, e := range tenantEntries(fx, tenantID) {
		keys[e.PeriodKey] = true
	}
	assert.True(t, keys["2025-03"])
	assert.True(t, keys["2025-12"])
	assert.True(t, keys["2026-02"])
}

func TestMaterializationService_Sync_RegeneratesAfterSoftDelete(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	seedExpense(t, fx, tenantID, ledger.FrequencyMonthly, 10, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	svc := NewMaterializationService(fx.scope)

	created, err := svc.Sync(context.Background(), tenantID, 2026, time.April)
	require.NoError(t, err)
	require.Equal(t, 1, created)

	entries := tenantEntries(fx, tenantID)
	require.Len(t, entries, 1)
	require.NoError(t, fx.entries.SoftDeleteForTenant(context.Background(), tenantID, entries[0].ID))

	// The deleted entry no longer blocks its period key
	created, err = svc.Sync(context.Background(), tenantID, 2026, time.April)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestMaterializationService_Sync_SkipsInactiveExpenses(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	expense := seedExpense(t, fx, tenantID, ledger.FrequencyMonthly, 1, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	expense.Deactivate()
	require.NoError(t, fx.expenses.Save(context.Background(), expense))
	svc := NewMaterializationService(fx.scope)

	created, err := svc.Sync(context.Background(), tenantID, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestMaterializationService_Sync_WeeklyExpense(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	seedExpense(t, fx, tenantID, ledger.FrequencyWeekly, 7, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	svc := NewMaterializationService(fx.scope)

	// February 2026 has 28 days: weekly on day 7 gives four occurrences
	created, err := svc.Sync(context.Background(), tenantID, 2026, time.February)
	require.NoError(t, err)
	assert.Equal(t, 4, created)
}

func TestMaterializationService_Sync_TenantIsolated(t *testing.T) {
	fx := newLedgerFixture()
	tenantA := uuid.New()
	tenantB := uuid.New()
	seedExpense(t, fx, tenantA, ledger.FrequencyMonthly, 1, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := NewMaterializationService(fx.scope)

	created, err := svc.Sync(context.Background(), tenantB, 2026, time.January)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Empty(t, tenantEntries(fx, tenantB))
}

func TestMaterializationService_Sync_InvalidMonth(t *testing.T) {
	fx := newLedgerFixture()
	svc := NewMaterializationService(fx.scope)

	_, err := svc.Sync(context.Background(), uuid.New(), 2026, time.Month(13))
	assert.Error(t, err)
}
