package ledger

import (
	"context"

	"github.com/fitmanager/backend/internal/domain/crm"
	"github.com/fitmanager/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations will be part of the same database transaction and will be
// committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all ledger repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Payment and reversal flows touch three aggregates (installment, contract,
// ledger entry) plus the audit trail; they must all commit or roll back
// together, so services obtain their repositories exclusively through this
// interface when mutating.
type TransactionalRepositories interface {
	// ContractRepo returns the contract repository scoped to the current transaction
	ContractRepo() ledger.ContractRepository
	// InstallmentRepo returns the installment repository scoped to the current transaction
	InstallmentRepo() ledger.InstallmentRepository
	// LedgerEntryRepo returns the ledger entry repository scoped to the current transaction
	LedgerEntryRepo() ledger.LedgerEntryRepository
	// RecurringExpenseRepo returns the recurring expense repository scoped to the current transaction
	RecurringExpenseRepo() ledger.RecurringExpenseRepository
	// AuditRepo returns the audit record repository scoped to the current transaction
	AuditRepo() ledger.AuditRecordRepository
	// ClientRepo returns the client repository scoped to the current
	// transaction. Client mutations share the scope so their audit records
	// commit with them.
	ClientRepo() crm.ClientRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	contractRepo    ledger.ContractRepository
	installmentRepo ledger.InstallmentRepository
	entryRepo       ledger.LedgerEntryRepository
	expenseRepo     ledger.RecurringExpenseRepository
	auditRepo       ledger.AuditRecordRepository
	clientRepo      crm.ClientRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	contractRepo ledger.ContractRepository,
	installmentRepo ledger.InstallmentRepository,
	entryRepo ledger.LedgerEntryRepository,
	expenseRepo ledger.RecurringExpenseRepository,
	auditRepo ledger.AuditRecordRepository,
	clientRepo crm.ClientRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		contractRepo:    contractRepo,
		installmentRepo: installmentRepo,
		entryRepo:       entryRepo,
		expenseRepo:     expenseRepo,
		auditRepo:       auditRepo,
		clientRepo:      clientRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ContractRepo returns the contract repository.
func (s *NoOpTransactionScope) ContractRepo() ledger.ContractRepository {
	return s.contractRepo
}

// InstallmentRepo returns the installment repository.
func (s *NoOpTransactionScope) InstallmentRepo() ledger.InstallmentRepository {
	return s.installmentRepo
}

// LedgerEntryRepo returns the ledger entry repository.
func (s *NoOpTransactionScope) LedgerEntryRepo() ledger.LedgerEntryRepository {
	return s.entryRepo
}

// RecurringExpenseRepo returns the recurring expense repository.
func (s *NoOpTransactionScope) RecurringExpenseRepo() ledger.RecurringExpenseRepository {
	return s.expenseRepo
}

// AuditRepo returns the audit record repository.
func (s *NoOpTransactionScope) AuditRepo() ledger.AuditRecordRepository {
	return s.auditRepo
}

// ClientRepo returns the client repository.
func (s *NoOpTransactionScope) ClientRepo() crm.ClientRepository {
	return s.clientRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
