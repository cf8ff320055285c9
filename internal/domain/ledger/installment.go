package ledger

import (
	"fmt"
	"time"

	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the payment status of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING" // Nothing paid yet
	InstallmentStatusPartial InstallmentStatus = "PARTIAL" // 0 < paid < due
	InstallmentStatusPaid    InstallmentStatus = "PAID"    // Fully paid
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPartial, InstallmentStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// PaymentMethod represents how a payment was settled
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodOther    PaymentMethod = "OTHER"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// Installment represents one scheduled partial payment of a contract.
// It carries no tenant reference: ownership is transitive through the
// parent contract, and every lookup must resolve that chain.
type Installment struct {
	shared.BaseAggregateRoot
	ContractID uuid.UUID         `json:"contract_id"`
	DueDate    time.Time         `json:"due_date"`
	AmountDue  decimal.Decimal   `json:"amount_due"`
	AmountPaid decimal.Decimal   `json:"amount_paid"`
	Status     InstallmentStatus `json:"status"`
	Method     *PaymentMethod    `json:"method,omitempty"` // Method of the most recent payment
	PaidAt     *time.Time        `json:"paid_at,omitempty"`
	DeletedAt  *time.Time        `json:"deleted_at,omitempty"`
}

// NewInstallment creates a single installment for a contract
func NewInstallment(contractID uuid.UUID, dueDate time.Time, amountDue decimal.Decimal) (*Installment, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	if amountDue.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Installment amount must be positive")
	}

	return &Installment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContractID:        contractID,
		DueDate:           dueDate,
		AmountDue:         amountDue,
		AmountPaid:        decimal.Zero,
		Status:            InstallmentStatusPending,
	}, nil
}

// Residual returns the unpaid portion of the installment
func (i *Installment) Residual() decimal.Decimal {
	return i.AmountDue.Sub(i.AmountPaid)
}

// IsPaid returns true if the installment is fully paid within tolerance
func (i *Installment) IsPaid() bool {
	return i.AmountPaid.GreaterThanOrEqual(i.AmountDue.Sub(AmountTolerance))
}

// ApplyPayment records a partial or full payment on the installment.
// The amount may exceed the residual only within AmountTolerance.
func (i *Installment) ApplyPayment(amount decimal.Decimal, method PaymentMethod, at time.Time) error {
	if i.Status == InstallmentStatusPaid {
		return shared.NewDomainError(shared.CodeInvalidState, "Installment is already fully paid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(i.Residual().Add(AmountTolerance)) {
		return shared.NewDomainError(shared.CodeAmountExceedsResidual,
			fmt.Sprintf("Payment %s exceeds the installment residual %s",
				amount.StringFixed(2), i.Residual().StringFixed(2)))
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}

	i.AmountPaid = i.AmountPaid.Add(amount)
	i.Method = &method
	i.recomputeStatus()
	if i.Status == InstallmentStatusPaid {
		i.PaidAt = &at
	}
	i.Touch()
	i.IncrementVersion()
	return nil
}

// ResetPayment reverses all payments on the installment, returning the
// amount that was reversed. Rejects installments with nothing paid.
func (i *Installment) ResetPayment() (decimal.Decimal, error) {
	if i.AmountPaid.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError(shared.CodeInvalidState, "Installment has no payments to reverse")
	}

	reversed := i.AmountPaid
	i.AmountPaid = decimal.Zero
	i.Status = InstallmentStatusPending
	i.Method = nil
	i.PaidAt = nil
	i.Touch()
	i.IncrementVersion()
	return reversed, nil
}

// CanDelete returns an error unless the installment can be soft-deleted
// (only while nothing has been paid on it)
func (i *Installment) CanDelete() error {
	if i.AmountPaid.GreaterThan(decimal.Zero) {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot delete an installment with recorded payments")
	}
	return nil
}

// recomputeStatus derives Status from the paid amount
func (i *Installment) recomputeStatus() {
	switch {
	case i.IsPaid():
		i.Status = InstallmentStatusPaid
	case i.AmountPaid.GreaterThan(decimal.Zero):
		i.Status = InstallmentStatusPartial
	default:
		i.Status = InstallmentStatusPending
	}
}

// GenerateInstallmentPlan splits the contract's installment residual into
// count even monthly installments starting at firstDue. The per-installment
// amount is rounded to cents and any remainder is absorbed by the first
// installment, so the plan always sums to exactly the residual.
func GenerateInstallmentPlan(contract *Contract, count int, firstDue time.Time) ([]*Installment, error) {
	if err := contract.CanAcceptInstallments(); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, shared.NewDomainError("INVALID_PLAN", "Installment count must be at least 1")
	}

	residual := contract.InstallmentResidual()
	if residual.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PLAN", "Contract has no residual to schedule")
	}

	per := residual.Div(decimal.NewFromInt(int64(count))).RoundDown(2)
	first := residual.Sub(per.Mul(decimal.NewFromInt(int64(count - 1))))

	installments := make([]*Installment, 0, count)
	for n := 0; n < count; n++ {
		amount := per
		if n == 0 {
			amount = first
		}
		inst, err := NewInstallment(contract.ID, firstDue.AddDate(0, n, 0), amount)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, nil
}
