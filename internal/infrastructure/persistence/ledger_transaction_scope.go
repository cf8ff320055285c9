package persistence

import (
	"context"

	"gorm.io/gorm"

	appledger "github.com/fitmanager/backend/internal/application/ledger"
	"github.com/fitmanager/backend/internal/domain/crm"
	"github.com/fitmanager/backend/internal/domain/ledger"
)

// GormTransactionScope implements the application layer's TransactionScope
// using GORM transactions. It provides atomic execution of multiple
// repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all ledger repositories
// within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ContractRepo returns the contract repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ContractRepo() ledger.ContractRepository {
	return NewGormContractRepository(r.tx)
}

// InstallmentRepo returns the installment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InstallmentRepo() ledger.InstallmentRepository {
	return NewGormInstallmentRepository(r.tx)
}

// LedgerEntryRepo returns the ledger entry repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LedgerEntryRepo() ledger.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(r.tx)
}

// RecurringExpenseRepo returns the recurring expense repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RecurringExpenseRepo() ledger.RecurringExpenseRepository {
	return NewGormRecurringExpenseRepository(r.tx)
}

// AuditRepo returns the audit record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AuditRepo() ledger.AuditRecordRepository {
	return NewGormAuditRecordRepository(r.tx)
}

// ClientRepo returns the client repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ClientRepo() crm.ClientRepository {
	return NewGormClientRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
