package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/ledger/acl"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService records and reverses installment payments. Every mutation
// runs in a single transaction spanning the installment, its contract, the
// ledger entry, and the audit trail.
type PaymentService struct {
	txScope TransactionScope
	credits acl.CreditConsumption
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txScope TransactionScope, credits acl.CreditConsumption) *PaymentService {
	return &PaymentService{
		txScope: txScope,
		credits: credits,
	}
}

// PayRequest represents a request to record a payment on an installment
type PayRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required,dgt0"`
	EffectiveDate *time.Time      `json:"effective_date"`
	Method        string          `json:"method" binding:"required,oneof=CASH CARD TRANSFER OTHER"`
}

// Pay records a full or partial payment on an installment. The installment,
// its contract, the incoming ledger entry, and the audit records commit
// atomically; any rule violation rolls everything back.
func (s *PaymentService) Pay(ctx context.Context, tenantID, actor, installmentID uuid.UUID, req PayRequest) (*InstallmentResponse, error) {
	at := time.Now().UTC()
	if req.EffectiveDate != nil {
		at = *req.EffectiveDate
	}
	method := ledger.PaymentMethod(req.Method)

	var resp *InstallmentResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		installment, err := repos.InstallmentRepo().FindByIDForTenant(ctx, tenantID, installmentID)
		if err != nil {
			return err
		}
		contract, err := repos.ContractRepo().FindByIDForTenant(ctx, tenantID, installment.ContractID)
		if err != nil {
			return err
		}

		instBefore := installmentSnapshot(installment)
		contractBefore := contractSnapshot(contract)

		// Installment-level checks fire before contract-level ones
		if err := installment.ApplyPayment(req.Amount, method, at); err != nil {
			return err
		}
		if err := contract.ApplyCollection(req.Amount); err != nil {
			return err
		}

		if err := repos.InstallmentRepo().Update(ctx, installment); err != nil {
			return fmt.Errorf("save installment: %w", err)
		}

		// Recompute the paid sum from the rows themselves before trusting
		// the denormalized total
		paidSum, err := repos.InstallmentRepo().SumPaidByContract(ctx, contract.ID)
		if err != nil {
			return fmt.Errorf("sum installment payments: %w", err)
		}
		if err := contract.VerifyCollectedAgainst(paidSum); err != nil {
			return err
		}

		if contract.PaymentStatus == ledger.PaymentStatusPaid && !contract.Closed {
			consumed := 0
			if contract.IsCreditBased() {
				consumed, err = s.credits.ConsumedCredits(ctx, tenantID, contract.ID)
				if err != nil {
					return fmt.Errorf("count consumed credits: %w", err)
				}
			}
			if contract.ShouldAutoClose(consumed) {
				contract.Close()
			}
		}

		if err := repos.ContractRepo().Update(ctx, contract); err != nil {
			return fmt.Errorf("save contract: %w", err)
		}

		entry, err := ledger.NewPaymentEntry(
			tenantID, contract.ClientID, contract.ID, installment.ID,
			req.Amount, at, method,
			fmt.Sprintf("Payment for %s", contract.Title),
		)
		if err != nil {
			return err
		}
		if err := repos.LedgerEntryRepo().Save(ctx, entry); err != nil {
			return fmt.Errorf("save ledger entry: %w", err)
		}

		if err := auditUpdate(ctx, repos.AuditRepo(), tenantID, actor,
			ledger.EntityTypeInstallment, installment.ID, instBefore, installmentSnapshot(installment)); err != nil {
			return err
		}
		if err := auditUpdate(ctx, repos.AuditRepo(), tenantID, actor,
			ledger.EntityTypeContract, contract.ID, contractBefore, contractSnapshot(contract)); err != nil {
			return err
		}

		resp = toInstallmentResponse(installment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Unpay reverses every payment recorded on an installment: the installment
// returns to PENDING, the contract total drops by the reversed amount, all
// linked ledger entries are soft-deleted, and the contract reopens if it is
// no longer fully paid.
func (s *PaymentService) Unpay(ctx context.Context, tenantID, actor, installmentID uuid.UUID) (*InstallmentResponse, error) {
	var resp *InstallmentResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		installment, err := repos.InstallmentRepo().FindByIDForTenant(ctx, tenantID, installmentID)
		if err != nil {
			return err
		}
		contract, err := repos.ContractRepo().FindByIDForTenant(ctx, tenantID, installment.ContractID)
		if err != nil {
			return err
		}

		instBefore := installmentSnapshot(installment)
		contractBefore := contractSnapshot(contract)

		reversed, err := installment.ResetPayment()
		if err != nil {
			return err
		}
		if err := contract.ReverseCollection(reversed); err != nil {
			return err
		}

		if err := repos.InstallmentRepo().Update(ctx, installment); err != nil {
			return fmt.Errorf("save installment: %w", err)
		}

		paidSum, err := repos.InstallmentRepo().SumPaidByContract(ctx, contract.ID)
		if err != nil {
			return fmt.Errorf("sum installment payments: %w", err)
		}
		if err := contract.VerifyCollectedAgainst(paidSum); err != nil {
			return err
		}

		if err := repos.ContractRepo().Update(ctx, contract); err != nil {
			return fmt.Errorf("save contract: %w", err)
		}

		// One installment can carry several partial-payment entries
		if err := repos.LedgerEntryRepo().SoftDeleteByInstallment(ctx, tenantID, installment.ID); err != nil {
			return fmt.Errorf("reverse ledger entries: %w", err)
		}

		if err := auditUpdate(ctx, repos.AuditRepo(), tenantID, actor,
			ledger.EntityTypeInstallment, installment.ID, instBefore, installmentSnapshot(installment)); err != nil {
			return err
		}
		if err := auditUpdate(ctx, repos.AuditRepo(), tenantID, actor,
			ledger.EntityTypeContract, contract.ID, contractBefore, contractSnapshot(contract)); err != nil {
			return err
		}

		resp = toInstallmentResponse(installment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func installmentSnapshot(i *ledger.Installment) map[string]any {
	snap := map[string]any{
		"amount_paid": i.AmountPaid.StringFixed(2),
		"status":      string(i.Status),
	}
	if i.Method != nil {
		snap["method"] = string(*i.Method)
	}
	return snap
}

func contractSnapshot(c *ledger.Contract) map[string]any {
	return map[string]any{
		"total_collected": c.TotalCollected.StringFixed(2),
		"payment_status":  string(c.PaymentStatus),
		"closed":          c.Closed,
	}
}

func auditUpdate(
	ctx context.Context,
	repo ledger.AuditRecordRepository,
	tenantID, actor uuid.UUID,
	entityType string,
	entityID uuid.UUID,
	before, after map[string]any,
) error {
	record, err := ledger.NewAuditRecord(tenantID, entityType, entityID,
		ledger.AuditActionUpdate, actor, ledger.Diff(before, after))
	if err != nil {
		return err
	}
	return repo.Create(ctx, record)
}
