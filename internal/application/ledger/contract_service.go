package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/fitmanager/backend/internal/domain/crm"
	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/fitmanager/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractService provides application-level contract operations: selling,
// installment plan management, and lifecycle transitions.
type ContractService struct {
	txScope    TransactionScope
	clientRepo crm.ClientRepository
}

// NewContractService creates a new ContractService
func NewContractService(txScope TransactionScope, clientRepo crm.ClientRepository) *ContractService {
	return &ContractService{
		txScope:    txScope,
		clientRepo: clientRepo,
	}
}

// CreateContractRequest represents a request to create a contract
type CreateContractRequest struct {
	ClientID          uuid.UUID       `json:"client_id" binding:"required"`
	Title             string          `json:"title" binding:"required"`
	PriceTotal        decimal.Decimal `json:"price_total" binding:"required"`
	DownPayment       decimal.Decimal `json:"down_payment"`
	CreditsTotal      int             `json:"credits_total"`
	StartDate         time.Time       `json:"start_date" binding:"required"`
	EndDate           *time.Time      `json:"end_date"`
	Notes             string          `json:"notes"`
	InstallmentCount  int             `json:"installment_count"`
	FirstDueDate      *time.Time      `json:"first_due_date"`
	DownPaymentMethod string          `json:"down_payment_method" binding:"omitempty,oneof=CASH CARD TRANSFER OTHER"`
}

// UpdateContractRequest represents a request to update contract details.
// Monetary fields are immutable after creation; corrections go through
// pay/unpay and installment management.
type UpdateContractRequest struct {
	Title   string     `json:"title" binding:"required"`
	EndDate *time.Time `json:"end_date"`
	Notes   string     `json:"notes"`
}

// AddInstallmentRequest represents a request to append one installment
type AddInstallmentRequest struct {
	DueDate   time.Time       `json:"due_date" binding:"required"`
	AmountDue decimal.Decimal `json:"amount_due" binding:"required,dgt0"`
}

// ContractDetailResponse bundles a contract with its installments
type ContractDetailResponse struct {
	Contract     *ContractResponse      `json:"contract"`
	Installments []*InstallmentResponse `json:"installments"`
}

// CreateContract creates a contract, optionally generating an installment
// plan over the residual and recording the down payment as an incoming
// ledger entry. Everything commits atomically.
func (s *ContractService) CreateContract(ctx context.Context, tenantID, actor uuid.UUID, req CreateContractRequest) (*ContractDetailResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, req.ClientID)
	if err != nil {
		return nil, err
	}

	contract, err := ledger.NewContract(
		tenantID,
		client.ID,
		req.Title,
		valueobject.NewMoneyEUR(req.PriceTotal),
		valueobject.NewMoneyEUR(req.DownPayment),
		req.CreditsTotal,
		req.StartDate,
	)
	if err != nil {
		return nil, err
	}
	contract.EndDate = req.EndDate
	if req.Notes != "" {
		contract.SetNotes(req.Notes)
	}

	var installments []*ledger.Installment
	if req.InstallmentCount > 0 {
		firstDue := req.StartDate
		if req.FirstDueDate != nil {
			firstDue = *req.FirstDueDate
		}
		installments, err = ledger.GenerateInstallmentPlan(contract, req.InstallmentCount, firstDue)
		if err != nil {
			return nil, err
		}
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ContractRepo().Save(ctx, contract); err != nil {
			return fmt.Errorf("save contract: %w", err)
		}
		if len(installments) > 0 {
			if err := repos.InstallmentRepo().SaveAll(ctx, installments); err != nil {
				return fmt.Errorf("save installment plan: %w", err)
			}
		}

		if req.DownPayment.IsPositive() {
			method := ledger.PaymentMethodOther
			if req.DownPaymentMethod != "" {
				method = ledger.PaymentMethod(req.DownPaymentMethod)
			}
			entry, err := ledger.NewDownPaymentEntry(
				tenantID, client.ID, contract.ID,
				req.DownPayment, req.StartDate, method,
				fmt.Sprintf("Down payment for %s", contract.Title),
			)
			if err != nil {
				return err
			}
			if err := repos.LedgerEntryRepo().Save(ctx, entry); err != nil {
				return fmt.Errorf("save down payment entry: %w", err)
			}
		}

		record, err := ledger.NewAuditRecord(tenantID, ledger.EntityTypeContract, contract.ID,
			ledger.AuditActionCreate, actor, ledger.ChangeSet{})
		if err != nil {
			return err
		}
		return repos.AuditRepo().Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return s.toDetailResponse(contract, installments), nil
}

// GetContract returns a contract with its installments
func (s *ContractService) GetContract(ctx context.Context, tenantID, contractID uuid.UUID) (*ContractDetailResponse, error) {
	var (
		contract     *ledger.Contract
		installments []*ledger.Installment
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		contract, err = repos.ContractRepo().FindByIDForTenant(ctx, tenantID, contractID)
		if err != nil {
			return err
		}
		installments, err = repos.InstallmentRepo().FindByContract(ctx, contract.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.toDetailResponse(contract, installments), nil
}

// ListContracts returns a page of the tenant's contracts
func (s *ContractService) ListContracts(ctx context.Context, tenantID uuid.UUID, filter ledger.ContractFilter) (*ListResponse[*ContractResponse], error) {
	var (
		contracts []*ledger.Contract
		total     int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		contracts, err = repos.ContractRepo().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err = repos.ContractRepo().CountForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]*ContractResponse, len(contracts))
	for n, c := range contracts {
		items[n] = toContractResponse(c)
	}
	return &ListResponse[*ContractResponse]{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// ListDueInstallments returns the tenant's installments filtered by status
// and due window, ordered by due date. This backs the upcoming-payments view.
func (s *ContractService) ListDueInstallments(ctx context.Context, tenantID uuid.UUID, filter ledger.InstallmentFilter) ([]*InstallmentResponse, error) {
	var installments []*ledger.Installment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		installments, err = repos.InstallmentRepo().FindDueForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]*InstallmentResponse, len(installments))
	for n, i := range installments {
		items[n] = toInstallmentResponse(i)
	}
	return items, nil
}

// UpdateContract updates the mutable fields of a contract
func (s *ContractService) UpdateContract(ctx context.Context, tenantID, actor, contractID uuid.UUID, req UpdateContractRequest) (*ContractResponse, error) {
	var resp *ContractResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		contract, err := repos.ContractRepo().FindByIDForTenant(ctx, tenantID, contractID)
		if err != nil {
			return err
		}

		before := map[string]any{
			"title": contract.Title,
			"notes": contract.Notes,
		}
		contract.Title = req.Title
		contract.EndDate = req.EndDate
		contract.SetNotes(req.Notes)

		if err := repos.ContractRepo().Update(ctx, contract); err != nil {
			return fmt.Errorf("save contract: %w", err)
		}
		after := map[string]any{
			"title": contract.Title,
			"notes": contract.Notes,
		}
		if err := auditUpdate(ctx, repos.AuditRepo(), tenantID, actor,
			ledger.EntityTypeContract, contract.ID, before, after); err != nil {
			return err
		}
		resp = toContractResponse(contract)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// AddInstallment appends a single installment to an open contract
func (s *ContractService) AddInstallment(ctx context.Context, tenantID, actor, contractID uuid.UUID, req AddInstallmentRequest) (*InstallmentResponse, error) {
	var resp *InstallmentResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		contract, err := repos.ContractRepo().FindByIDForTenant(ctx, tenantID, contractID)
		if err != nil {
			return err
		}
		if err := contract.CanAcceptInstallments(); err != nil {
			return err
		}

		installment, err := ledger.NewInstallment(contract.ID, req.DueDate, req.AmountDue)
		if err != nil {
			return err
		}
		if err := repos.InstallmentRepo().Save(ctx, installment); err != nil {
			return fmt.Errorf("save installment: %w", err)
		}

		record, err := ledger.NewAuditRecord(tenantID, ledger.EntityTypeInstallment, installment.ID,
			ledger.AuditActionCreate, actor, ledger.ChangeSet{})
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Create(ctx, record); err != nil {
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

// DeleteInstallment soft-deletes an installment. Installments with recorded
// payments must be unpaid first.
func (s *ContractService) DeleteInstallment(ctx context.Context, tenantID, actor, installmentID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		installment, err := repos.InstallmentRepo().FindByIDForTenant(ctx, tenantID, installmentID)
		if err != nil {
			return err
		}
		if err := installment.CanDelete(); err != nil {
			return err
		}
		if err := repos.InstallmentRepo().SoftDelete(ctx, installment.ID); err != nil {
			return fmt.Errorf("delete installment: %w", err)
		}

		record, err := ledger.NewAuditRecord(tenantID, ledger.EntityTypeInstallment, installment.ID,
			ledger.AuditActionDelete, actor, ledger.ChangeSet{})
		if err != nil {
			return err
		}
		return repos.AuditRepo().Create(ctx, record)
	})
}

// DeleteContract soft-deletes a contract. Only contracts with no collected
// installment payments can be deleted; anything already paid must be
// reversed first so the ledger stays reconcilable.
func (s *ContractService) DeleteContract(ctx context.Context, tenantID, actor, contractID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		contract, err := repos.ContractRepo().FindByIDForTenant(ctx, tenantID, contractID)
		if err != nil {
			return err
		}

		paidSum, err := repos.InstallmentRepo().SumPaidByContract(ctx, contract.ID)
		if err != nil {
			return fmt.Errorf("sum installment payments: %w", err)
		}
		if paidSum.GreaterThan(decimal.Zero) {
			return shared.NewDomainError(shared.CodeInvalidState,
				"Cannot delete a contract with collected payments; unpay its installments first")
		}

		installments, err := repos.InstallmentRepo().FindByContract(ctx, contract.ID)
		if err != nil {
			return err
		}
		for _, installment := range installments {
			if err := repos.InstallmentRepo().SoftDelete(ctx, installment.ID); err != nil {
				return fmt.Errorf("delete installment: %w", err)
			}
		}
		if err := repos.ContractRepo().SoftDeleteForTenant(ctx, tenantID, contract.ID); err != nil {
			return fmt.Errorf("delete contract: %w", err)
		}

		record, err := ledger.NewAuditRecord(tenantID, ledger.EntityTypeContract, contract.ID,
			ledger.AuditActionDelete, actor, ledger.ChangeSet{})
		if err != nil {
			return err
		}
		return repos.AuditRepo().Create(ctx, record)
	})
}

// CloseContract marks a contract closed regardless of collection status
func (s *ContractService) CloseContract(ctx context.Context, tenantID, actor, contractID uuid.UUID) (*ContractResponse, error) {
	return s.transition(ctx, tenantID, actor, contractID, func(c *ledger.Contract) error {
		if c.Closed {
			return shared.NewDomainError(shared.CodeInvalidState, "Contract is already closed")
		}
		c.Close()
		return nil
	})
}

// ReopenContract clears the closed flag
func (s *ContractService) ReopenContract(ctx context.Context, tenantID, actor, contractID uuid.UUID) (*ContractResponse, error) {
	return s.transition(ctx, tenantID, actor, contractID, func(c *ledger.Contract) error {
		if !c.Closed {
			return shared.NewDomainError(shared.CodeInvalidState, "Contract is not closed")
		}
		c.Reopen()
		return nil
	})
}

func (s *ContractService) transition(ctx context.Context, tenantID, actor, contractID uuid.UUID, fn func(*ledger.Contract) error) (*ContractResponse, error) {
	var resp *ContractResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		contract, err := repos.ContractRepo().FindByIDForTenant(ctx, tenantID, contractID)
		if err != nil {
			return err
		}
		before := contractSnapshot(contract)
		if err := fn(contract); err != nil {
			return err
		}
		if err := repos.ContractRepo().Update(ctx, contract); err != nil {
			return fmt.Errorf("save contract: %w", err)
		}
		if err := auditUpdate(ctx, repos.AuditRepo(), tenantID, actor,
			ledger.EntityTypeContract, contract.ID, before, contractSnapshot(contract)); err != nil {
			return err
		}
		resp = toContractResponse(contract)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *ContractService) toDetailResponse(contract *ledger.Contract, installments []*ledger.Installment) *ContractDetailResponse {
	resp := &ContractDetailResponse{
		Contract:     toContractResponse(contract),
		Installments: make([]*InstallmentResponse, len(installments)),
	}
	for n, inst := range installments {
		resp.Installments[n] = toInstallmentResponse(inst)
	}
	return resp
}
