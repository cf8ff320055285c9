package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/fitmanager/backend/internal/domain/crm"
	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedClient(t *testing.T, fx *ledgerFixture, tenantID uuid.UUID) *crm.Client {
	client, err := crm.NewClient(tenantID, "Anna", "Rossi", "anna@example.com", "")
	require.NoError(t, err)
	require.NoError(t, fx.clients.Save(context.Background(), client))
	return client
}

// seedContract creates a 1000 EUR contract with a 200 down payment and a
// four-installment plan of 200 each.
func seedContract(t *testing.T, fx *ledgerFixture, tenantID uuid.UUID) (*ContractDetailResponse, uuid.UUID) {
	client := seedClient(t, fx, tenantID)
	svc := NewContractService(fx.scope, fx.clients)

	detail, err := svc.CreateContract(context.Background(), tenantID, uuid.New(), CreateContractRequest{
		ClientID:         client.ID,
		Title:            "Personal training 2026",
		PriceTotal:       decimal.NewFromInt(1000),
		DownPayment:      decimal.NewFromInt(200),
		StartDate:        time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		InstallmentCount: 4,
	})
	require.NoError(t, err)
	require.Len(t, detail.Installments, 4)
	return detail, client.ID
}

// ============================================
// Pay Tests
// ============================================

func TestPaymentService_Pay_FullInstallment(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	actor := uuid.New()
	detail, clientID := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)

	resp, err := svc.Pay(context.Background(), tenantID, actor, detail.Installments[0].ID, PayRequest{
		Amount: decimal.NewFromInt(200),
		Method: "CASH",
	})
	require.NoError(t, err)

	assert.Equal(t, "PAID", resp.Status)
	assert.True(t, resp.AmountPaid.Equal(decimal.NewFromInt(200)))
	require.NotNil(t, resp.PaidAt)

	contract, err := fx.contracts.FindByIDForTenant(context.Background(), tenantID, detail.Contract.ID)
	require.NoError(t, err)
	assert.True(t, contract.TotalCollected.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, ledger.PaymentStatusPartial, contract.PaymentStatus)

	// Payment entry written and linked
	entries, err := fx.entries.FindByInstallment(context.Background(), tenantID, detail.Installments[0].ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.DirectionIn, entries[0].Direction)
	assert.Equal(t, ledger.OriginSystem, entries[0].Origin)
	require.NotNil(t, entries[0].ClientID)
	assert.Equal(t, clientID, *entries[0].ClientID)

	// Audit records for installment and contract
	instAudit, _ := fx.audits.FindByEntityForTenant(context.Background(), tenantID, ledger.EntityTypeInstallment, detail.Installments[0].ID)
	require.Len(t, instAudit, 1)
	assert.Equal(t, ledger.AuditActionUpdate, instAudit[0].Action)
	assert.Equal(t, "PAID", instAudit[0].Changes.After["status"])
}

func TestPaymentService_Pay_AllInstallmentsClosesContract(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	actor := uuid.New()
	detail, _ := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)

	for _, inst := range detail.Installments {
		_, err := svc.Pay(context.Background(), tenantID, actor, inst.ID, PayRequest{
			Amount: decimal.NewFromInt(200),
			Method: "TRANSFER",
		})
		require.NoError(t, err)
	}

	contract, err := fx.contracts.FindByIDForTenant(context.Background(), tenantID, detail.Contract.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.PaymentStatusPaid, contract.PaymentStatus)
	assert.True(t, contract.TotalCollected.Equal(decimal.NewFromInt(1000)))
	assert.True(t, contract.Closed)
}

func TestPaymentService_Pay_PartialThenRemainder(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	actor := uuid.New()
	detail, _ := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)
	instID := detail.Installments[0].ID

	resp, err := svc.Pay(context.Background(), tenantID, actor, instID, PayRequest{
		Amount: decimal.NewFromInt(80),
		Method: "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", resp.Status)
	assert.Nil(t, resp.PaidAt)

	resp, err = svc.Pay(context.Background(), tenantID, actor, instID, PayRequest{
		Amount: decimal.NewFromInt(120),
		Method: "CARD",
	})
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)

	// Two partial payments leave two linked entries
	entries, err := fx.entries.FindByInstallment(context.Background(), tenantID, instID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPaymentService_Pay_ExceedsInstallmentResidual(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	detail, _ := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)

	_, err := svc.Pay(context.Background(), tenantID, uuid.New(), detail.Installments[0].ID, PayRequest{
		Amount: decimal.NewFromFloat(200.02),
		Method: "CASH",
	})
	require.Error(t, err)
	de, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, shared.CodeAmountExceedsResidual, de.Code)

	// Nothing was persisted
	contract, _ := fx.contracts.FindByIDForTenant(context.Background(), tenantID, detail.Contract.ID)
	assert.True(t, contract.TotalCollected.Equal(decimal.NewFromInt(200)))
	inst, _ := fx.installments.FindByIDForTenant(context.Background(), tenantID, detail.Installments[0].ID)
	assert.True(t, inst.AmountPaid.IsZero())
}

func TestPaymentService_Pay_AlreadyPaid(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	actor := uuid.New()
	detail, _ := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)
	instID := detail.Installments[1].ID

	_, err := svc.Pay(context.Background(), tenantID, actor, instID, PayRequest{
		Amount: decimal.NewFromInt(200), Method: "CASH",
	})
	require.NoError(t, err)

	_, err = svc.Pay(context.Background(), tenantID, actor, instID, PayRequest{
		Amount: decimal.NewFromInt(1), Method: "CASH",
	})
	require.Error(t, err)
	de, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, shared.CodeInvalidState, de.Code)
}

func TestPaymentService_Pay_ForeignTenantLooksAbsent(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	detail, _ := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)

	_, err := svc.Pay(context.Background(), uuid.New(), uuid.New(), detail.Installments[0].ID, PayRequest{
		Amount: decimal.NewFromInt(200), Method: "CASH",
	})
	assert.True(t, shared.IsNotFound(err))
}

func TestPaymentService_Pay_CreditContractNotClosedUntilCreditsConsumed(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	client := seedClient(t, fx, tenantID)
	contractSvc := NewContractService(fx.scope, fx.clients)

	detail, err := contractSvc.CreateContract(context.Background(), tenantID, uuid.New(), CreateContractRequest{
		ClientID:         client.ID,
		Title:            "10 sessions",
		PriceTotal:       decimal.NewFromInt(500),
		CreditsTotal:     10,
		StartDate:        time.Now(),
		InstallmentCount: 1,
	})
	require.NoError(t, err)

	fx.credits.consumed = 4
	svc := NewPaymentService(fx.scope, fx.credits)
	_, err = svc.Pay(context.Background(), tenantID, uuid.New(), detail.Installments[0].ID, PayRequest{
		Amount: decimal.NewFromInt(500), Method: "CARD",
	})
	require.NoError(t, err)

	contract, _ := fx.contracts.FindByIDForTenant(context.Background(), tenantID, detail.Contract.ID)
	assert.Equal(t, ledger.PaymentStatusPaid, contract.PaymentStatus)
	assert.False(t, contract.Closed)
}

// ============================================
// Unpay Tests
// ============================================

func TestPaymentService_Unpay_ReversesEverything(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	actor := uuid.New()
	detail, _ := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)
	instID := detail.Installments[0].ID

	_, err := svc.Pay(context.Background(), tenantID, actor, instID, PayRequest{
		Amount: decimal.NewFromInt(200), Method: "CASH",
	})
	require.NoError(t, err)

	resp, err := svc.Unpay(context.Background(), tenantID, actor, instID)
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	assert.True(t, resp.AmountPaid.IsZero())
	assert.Nil(t, resp.PaidAt)

	contract, _ := fx.contracts.FindByIDForTenant(context.Background(), tenantID, detail.Contract.ID)
	assert.True(t, contract.TotalCollected.Equal(decimal.NewFromInt(200)))

	// Linked entries are reversed
	entries, _ := fx.entries.FindByInstallment(context.Background(), tenantID, instID)
	assert.Empty(t, entries)
}

func TestPaymentService_Unpay_ReopensClosedContract(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	actor := uuid.New()
	detail, _ := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)

	for _, inst := range detail.Installments {
		_, err := svc.Pay(context.Background(), tenantID, actor, inst.ID, PayRequest{
			Amount: decimal.NewFromInt(200), Method: "CASH",
		})
		require.NoError(t, err)
	}
	contract, _ := fx.contracts.FindByIDForTenant(context.Background(), tenantID, detail.Contract.ID)
	require.True(t, contract.Closed)

	_, err := svc.Unpay(context.Background(), tenantID, actor, detail.Installments[3].ID)
	require.NoError(t, err)

	contract, _ = fx.contracts.FindByIDForTenant(context.Background(), tenantID, detail.Contract.ID)
	assert.False(t, contract.Closed)
	assert.Equal(t, ledger.PaymentStatusPartial, contract.PaymentStatus)
	assert.True(t, contract.TotalCollected.Equal(decimal.NewFromInt(800)))
}

func TestPaymentService_Unpay_ReversesMultiplePartialEntries(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	actor := uuid.New()
	detail, _ := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)
	instID := detail.Installments[0].ID

	for _, amount := range []int64{50, 70, 80} {
		_, err := svc.Pay(context.Background(), tenantID, actor, instID, PayRequest{
			Amount: decimal.NewFromInt(amount), Method: "CASH",
		})
		require.NoError(t, err)
	}
	entries, _ := fx.entries.FindByInstallment(context.Background(), tenantID, instID)
	require.Len(t, entries, 3)

	_, err := svc.Unpay(context.Background(), tenantID, actor, instID)
	require.NoError(t, err)

	entries, _ = fx.entries.FindByInstallment(context.Background(), tenantID, instID)
	assert.Empty(t, entries)
}

func TestPaymentService_Unpay_NothingPaid(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	detail, _ := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)

	_, err := svc.Unpay(context.Background(), tenantID, uuid.New(), detail.Installments[0].ID)
	require.Error(t, err)
	de, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, shared.CodeInvalidState, de.Code)
}

// ============================================
// Pay/Unpay consistency Tests
// ============================================

func TestPaymentService_PayUnpaySequenceKeepsContractConsistent(t *testing.T) {
	fx := newLedgerFixture()
	tenantID := uuid.New()
	actor := uuid.New()
	detail, _ := seedContract(t, fx, tenantID)
	svc := NewPaymentService(fx.scope, fx.credits)
	ctx := context.Background()

	steps := []struct {
		pay    bool
		index  int
		amount int64
	}{
		{true, 0, 200},
		{true, 1, 100},
		{false, 0, 0},
		{true, 1, 100},
		{true, 0, 200},
		{false, 1, 0},
	}

	for n, step := range steps {
		var err error
		if step.pay {
			_, err = svc.Pay(ctx, tenantID, actor, detail.Installments[step.index].ID, PayRequest{
				Amount: decimal.NewFromInt(step.amount), Method: "CASH",
			})
		} else {
			_, err = svc.Unpay(ctx, tenantID, actor, detail.Installments[step.index].ID)
		}
		require.NoError(t, err, "step %d", n)

		contract, err := fx.contracts.FindByIDForTenant(ctx, tenantID, detail.Contract.ID)
		require.NoError(t, err)
		paidSum, err := fx.installments.SumPaidByContract(ctx, contract.ID)
		require.NoError(t, err)
		assert.NoError(t, contract.VerifyCollectedAgainst(paidSum), "step %d", n)
	}

	contract, _ := fx.contracts.FindByIDForTenant(ctx, tenantID, detail.Contract.ID)
	assert.True(t, contract.TotalCollected.Equal(decimal.NewFromInt(400)))
}
