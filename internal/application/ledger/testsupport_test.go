package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/fitmanager/backend/internal/domain/crm"
	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repository fakes. They reproduce the tenant-scoping and
// soft-delete semantics of the real repositories so service tests can run
// full pay/unpay/sync sequences without a database.

type memContractRepo struct {
	byID map[uuid.UUID]*ledger.Contract
}

func newMemContractRepo() *memContractRepo {
	return &memContractRepo{byID: make(map[uuid.UUID]*ledger.Contract)}
}

func (r *memContractRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Contract, error) {
	c, ok := r.byID[id]
	if !ok || c.TenantID != tenantID || c.DeletedAt != nil {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memContractRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ ledger.ContractFilter) ([]*ledger.Contract, error) {
	var out []*ledger.Contract
	for _, c := range r.byID {
		if c.TenantID == tenantID && c.DeletedAt == nil {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memContractRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.ContractFilter) (int64, error) {
	all, _ := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(all)), nil
}

func (r *memContractRepo) FindByClientForTenant(_ context.Context, tenantID, clientID uuid.UUID) ([]*ledger.Contract, error) {
	var out []*ledger.Contract
	for _, c := range r.byID {
		if c.TenantID == tenantID && c.ClientID == clientID && c.DeletedAt == nil {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memContractRepo) Save(_ context.Context, contract *ledger.Contract) error {
	cp := *contract
	cp.ClearMutated()
	r.byID[contract.ID] = &cp
	return nil
}

func (r *memContractRepo) Update(_ context.Context, contract *ledger.Contract) error {
	cur, ok := r.byID[contract.ID]
	if !ok || cur.DeletedAt != nil {
		return shared.ErrNotFound
	}
	if cur.Version != contract.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *contract
	cp.ClearMutated()
	r.byID[contract.ID] = &cp
	return nil
}

func (r *memContractRepo) SoftDeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	c, ok := r.byID[id]
	if !ok || c.TenantID != tenantID {
		return shared.ErrNotFound
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

type memInstallmentRepo struct {
	byID      map[uuid.UUID]*ledger.Installment
	contracts *memContractRepo
}

func newMemInstallmentRepo(contracts *memContractRepo) *memInstallmentRepo {
	return &memInstallmentRepo{
		byID:      make(map[uuid.UUID]*ledger.Installment),
		contracts: contracts,
	}
}

func (r *memInstallmentRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Installment, error) {
	inst, ok := r.byID[id]
	if !ok || inst.DeletedAt != nil {
		return nil, shared.ErrNotFound
	}
	// Ownership resolves through the parent contract
	contract, ok := r.contracts.byID[inst.ContractID]
	if !ok || contract.TenantID != tenantID || contract.DeletedAt != nil {
		return nil, shared.ErrNotFound
	}
	cp := *inst
	return &cp, nil
}

func (r *memInstallmentRepo) FindByContract(_ context.Context, contractID uuid.UUID) ([]*ledger.Installment, error) {
	var out []*ledger.Installment
	for _, inst := range r.byID {
		if inst.ContractID == contractID && inst.DeletedAt == nil {
			cp := *inst
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memInstallmentRepo) FindDueForTenant(_ context.Context, tenantID uuid.UUID, _ ledger.InstallmentFilter) ([]*ledger.Installment, error) {
	var out []*ledger.Installment
	for _, inst := range r.byID {
		if inst.DeletedAt != nil {
			continue
		}
		contract, ok := r.contracts.byID[inst.ContractID]
		if ok && contract.TenantID == tenantID && contract.DeletedAt == nil {
			cp := *inst
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memInstallmentRepo) SumPaidByContract(_ context.Context, contractID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, inst := range r.byID {
		if inst.ContractID == contractID && inst.DeletedAt == nil {
			sum = sum.Add(inst.AmountPaid)
		}
	}
	return sum, nil
}

func (r *memInstallmentRepo) Save(_ context.Context, installment *ledger.Installment) error {
	cp := *installment
	cp.ClearMutated()
	r.byID[installment.ID] = &cp
	return nil
}

func (r *memInstallmentRepo) SaveAll(ctx context.Context, installments []*ledger.Installment) error {
	for _, inst := range installments {
		if err := r.Save(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

func (r *memInstallmentRepo) Update(_ context.Context, installment *ledger.Installment) error {
	cur, ok := r.byID[installment.ID]
	if !ok || cur.DeletedAt != nil {
		return shared.ErrNotFound
	}
	if cur.Version != installment.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *installment
	cp.ClearMutated()
	r.byID[installment.ID] = &cp
	return nil
}

func (r *memInstallmentRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	inst, ok := r.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	now := time.Now()
	inst.DeletedAt = &now
	return nil
}

type memEntryRepo struct {
	byID map[uuid.UUID]*ledger.LedgerEntry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{byID: make(map[uuid.UUID]*ledger.LedgerEntry)}
}

func (r *memEntryRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.LedgerEntry, error) {
	e, ok := r.byID[id]
	if !ok || e.TenantID != tenantID || e.DeletedAt != nil {
		return nil, shared.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memEntryRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter ledger.LedgerEntryFilter) ([]*ledger.LedgerEntry, error) {
	var out []*ledger.LedgerEntry
	for _, e := range r.byID {
		if e.TenantID != tenantID || e.DeletedAt != nil {
			continue
		}
		if filter.Direction != nil && e.Direction != *filter.Direction {
			continue
		}
		if filter.Category != nil && e.Category != *filter.Category {
			continue
		}
		if filter.Origin != nil && e.Origin != *filter.Origin {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memEntryRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.LedgerEntryFilter) (int64, error) {
	all, _ := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(all)), nil
}

func (r *memEntryRepo) FindByInstallment(_ context.Context, tenantID, installmentID uuid.UUID) ([]*ledger.LedgerEntry, error) {
	var out []*ledger.LedgerEntry
	for _, e := range r.byID {
		if e.TenantID == tenantID && e.DeletedAt == nil &&
			e.InstallmentID != nil && *e.InstallmentID == installmentID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memEntryRepo) Save(_ context.Context, entry *ledger.LedgerEntry) error {
	cp := *entry
	r.byID[entry.ID] = &cp
	return nil
}

func (r *memEntryRepo) CreateIfAbsent(ctx context.Context, entry *ledger.LedgerEntry) (bool, error) {
	for _, e := range r.byID {
		if e.TenantID == entry.TenantID && e.DeletedAt == nil &&
			e.RecurringExpenseID != nil && entry.RecurringExpenseID != nil &&
			*e.RecurringExpenseID == *entry.RecurringExpenseID &&
			e.PeriodKey == entry.PeriodKey {
			return false, nil
		}
	}
	return true, r.Save(ctx, entry)
}

func (r *memEntryRepo) SoftDeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	e, ok := r.byID[id]
	if !ok || e.TenantID != tenantID {
		return shared.ErrNotFound
	}
	now := time.Now()
	e.DeletedAt = &now
	return nil
}

func (r *memEntryRepo) SoftDeleteByInstallment(_ context.Context, tenantID, installmentID uuid.UUID) error {
	now := time.Now()
	for _, e := range r.byID {
		if e.TenantID == tenantID && e.DeletedAt == nil &&
			e.InstallmentID != nil && *e.InstallmentID == installmentID {
			e.DeletedAt = &now
		}
	}
	return nil
}

func (r *memEntryRepo) SumByDirectionForTenant(_ context.Context, tenantID uuid.UUID, direction ledger.Direction, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.byID {
		if e.TenantID == tenantID && e.DeletedAt == nil && e.Direction == direction &&
			!e.EffectiveDate.Before(from) && e.EffectiveDate.Before(to) {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

type memExpenseRepo struct {
	byID map[uuid.UUID]*ledger.RecurringExpense
}

func newMemExpenseRepo() *memExpenseRepo {
	return &memExpenseRepo{byID: make(map[uuid.UUID]*ledger.RecurringExpense)}
}

func (r *memExpenseRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.RecurringExpense, error) {
	e, ok := r.byID[id]
	if !ok || e.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memExpenseRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ ledger.RecurringExpenseFilter) ([]*ledger.RecurringExpense, error) {
	var out []*ledger.RecurringExpense
	for _, e := range r.byID {
		if e.TenantID == tenantID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memExpenseRepo) FindActiveForTenant(_ context.Context, tenantID uuid.UUID) ([]*ledger.RecurringExpense, error) {
	var out []*ledger.RecurringExpense
	for _, e := range r.byID {
		if e.TenantID == tenantID && e.Active {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memExpenseRepo) Save(_ context.Context, expense *ledger.RecurringExpense) error {
	cp := *expense
	cp.ClearMutated()
	r.byID[expense.ID] = &cp
	return nil
}

func (r *memExpenseRepo) Update(_ context.Context, expense *ledger.RecurringExpense) error {
	cur, ok := r.byID[expense.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if cur.Version != expense.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *expense
	cp.ClearMutated()
	r.byID[expense.ID] = &cp
	return nil
}

func (r *memExpenseRepo) SoftDeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	e, ok := r.byID[id]
	if !ok || e.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type memAuditRepo struct {
	records []*ledger.AuditRecord
}

func newMemAuditRepo() *memAuditRepo { return &memAuditRepo{} }

func (r *memAuditRepo) Create(_ context.Context, record *ledger.AuditRecord) error {
	cp := *record
	r.records = append(r.records, &cp)
	return nil
}

func (r *memAuditRepo) FindByEntityForTenant(_ context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]*ledger.AuditRecord, error) {
	var out []*ledger.AuditRecord
	for _, rec := range r.records {
		if rec.TenantID == tenantID && rec.EntityType == entityType && rec.EntityID == entityID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memAuditRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]*ledger.AuditRecord, error) {
	var out []*ledger.AuditRecord
	for _, rec := range r.records {
		if rec.TenantID == tenantID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memClientRepo struct {
	byID map[uuid.UUID]*crm.Client
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{byID: make(map[uuid.UUID]*crm.Client)}
}

func (r *memClientRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	c, ok := r.byID[id]
	if !ok || c.TenantID != tenantID || c.DeletedAt != nil {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memClientRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter crm.ClientFilter) ([]crm.Client, error) {
	var out []crm.Client
	for _, c := range r.byID {
		if c.TenantID != tenantID || c.DeletedAt != nil {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.FullName()), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *memClientRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter crm.ClientFilter) (int64, error) {
	all, _ := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(all)), nil
}

func (r *memClientRepo) Save(_ context.Context, client *crm.Client) error {
	cp := *client
	cp.ClearMutated()
	r.byID[client.ID] = &cp
	return nil
}

func (r *memClientRepo) Update(_ context.Context, client *crm.Client) error {
	cur, ok := r.byID[client.ID]
	if !ok || cur.DeletedAt != nil {
		return shared.ErrNotFound
	}
	if cur.Version != client.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	cp := *client
	cp.ClearMutated()
	r.byID[client.ID] = &cp
	return nil
}

func (r *memClientRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	c, ok := r.byID[id]
	if !ok || c.TenantID != tenantID {
		return shared.ErrNotFound
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

// stubCredits is a canned session-consumption counter
type stubCredits struct {
	consumed int
	err      error
}

func (s *stubCredits) ConsumedCredits(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return s.consumed, s.err
}

// ledgerFixture bundles the fakes behind a NoOpTransactionScope
type ledgerFixture struct {
	contracts    *memContractRepo
	installments *memInstallmentRepo
	entries      *memEntryRepo
	expenses     *memExpenseRepo
	audits       *memAuditRepo
	clients      *memClientRepo
	scope        *NoOpTransactionScope
	credits      *stubCredits
}

func newLedgerFixture() *ledgerFixture {
	contracts := newMemContractRepo()
	installments := newMemInstallmentRepo(contracts)
	entries := newMemEntryRepo()
	expenses := newMemExpenseRepo()
	audits := newMemAuditRepo()
	clients := newMemClientRepo()

	return &ledgerFixture{
		contracts:    contracts,
		installments: installments,
		entries:      entries,
		expenses:     expenses,
		audits:       audits,
		clients:      clients,
		scope:        NewNoOpTransactionScope(contracts, installments, entries, expenses, audits, clients),
		credits:      &stubCredits{},
	}
}
