package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/fitmanager/backend/internal/domain/shared"
	"github.com/fitmanager/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountTolerance is the rounding tolerance applied to all monetary
// comparisons in the ledger (0.01 currency units). Denormalized sums may
// drift by fractions of a cent under floating conversions; anything within
// this tolerance is treated as equal.
var AmountTolerance = decimal.NewFromFloat(0.01)

// PaymentStatus represents the collection status of a contract
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING" // Nothing collected yet
	PaymentStatusPartial PaymentStatus = "PARTIAL" // 0 < collected < price
	PaymentStatusPaid    PaymentStatus = "PAID"    // Fully collected
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// Contract represents a sale of training services to a client (aggregate root).
// TotalCollected is a denormalized aggregate: the canonical definition is
// DownPayment plus the sum of AmountPaid over all non-deleted installments,
// within AmountTolerance. It is recomputed transactionally alongside every
// installment mutation and never trusted across transactions.
type Contract struct {
	shared.TenantAggregateRoot
	ClientID       uuid.UUID       `json:"client_id"`
	Title          string          `json:"title"`
	PriceTotal     decimal.Decimal `json:"price_total"`
	DownPayment    decimal.Decimal `json:"down_payment"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	Closed         bool            `json:"closed"`
	CreditsTotal   int             `json:"credits_total"` // 0 means time-based (no session credits)
	StartDate      time.Time       `json:"start_date"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
}

// NewContract creates a new contract. The down payment is counted as
// collected immediately, so a contract sold with a down payment starts in
// PARTIAL status (or PAID, if the down payment covers the full price).
func NewContract(
	tenantID uuid.UUID,
	clientID uuid.UUID,
	title string,
	priceTotal valueobject.Money,
	downPayment valueobject.Money,
	creditsTotal int,
	startDate time.Time,
) (*Contract, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Contract title cannot be empty")
	}
	if priceTotal.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Contract price must be positive")
	}
	if downPayment.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Down payment cannot be negative")
	}
	if downPayment.Amount().GreaterThan(priceTotal.Amount().Add(AmountTolerance)) {
		return nil, shared.NewDomainError(shared.CodeAmountExceedsResidual, "Down payment cannot exceed the contract price")
	}
	if creditsTotal < 0 {
		return nil, shared.NewDomainError("INVALID_CREDITS", "Credits total cannot be negative")
	}

	c := &Contract{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Title:               strings.TrimSpace(title),
		PriceTotal:          priceTotal.Amount(),
		DownPayment:         downPayment.Amount(),
		TotalCollected:      downPayment.Amount(),
		CreditsTotal:        creditsTotal,
		StartDate:           startDate,
	}
	c.recomputePaymentStatus()
	return c, nil
}

// Residual returns the amount still to be collected on the contract
func (c *Contract) Residual() decimal.Decimal {
	return c.PriceTotal.Sub(c.TotalCollected)
}

// InstallmentResidual returns the amount that remains to be scheduled in
// installments: the price minus the down payment.
func (c *Contract) InstallmentResidual() decimal.Decimal {
	return c.PriceTotal.Sub(c.DownPayment)
}

// IsCreditBased returns true if the contract is a session-credit package
func (c *Contract) IsCreditBased() bool {
	return c.CreditsTotal > 0
}

// IsFullyCollected returns true if the collected total covers the price
// within tolerance
func (c *Contract) IsFullyCollected() bool {
	return c.TotalCollected.GreaterThanOrEqual(c.PriceTotal.Sub(AmountTolerance))
}

// ApplyCollection records an incoming amount against the contract.
// The caller is responsible for the installment-level checks; this method
// enforces the contract-level overpayment bound.
func (c *Contract) ApplyCollection(amount decimal.Decimal) error {
	if c.Closed {
		return shared.NewDomainError(shared.CodeInvalidState, "Contract is closed")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Collection amount must be positive")
	}
	if amount.GreaterThan(c.Residual().Add(AmountTolerance)) {
		return shared.NewDomainError(shared.CodeAmountExceedsResidual,
			fmt.Sprintf("Amount %s exceeds the contract residual %s",
				amount.StringFixed(2), c.Residual().StringFixed(2)))
	}

	c.TotalCollected = c.TotalCollected.Add(amount)
	c.recomputePaymentStatus()
	c.Touch()
	c.IncrementVersion()
	return nil
}

// ReverseCollection removes a previously collected amount, flooring the
// total at zero. If the contract was closed and is no longer fully paid,
// it is reopened.
func (c *Contract) ReverseCollection(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal amount must be positive")
	}

	c.TotalCollected = c.TotalCollected.Sub(amount)
	if c.TotalCollected.IsNegative() {
		c.TotalCollected = decimal.Zero
	}
	c.recomputePaymentStatus()

	if c.Closed && c.PaymentStatus != PaymentStatusPaid {
		c.Closed = false
	}

	c.Touch()
	c.IncrementVersion()
	return nil
}

// ShouldAutoClose reports whether the contract is eligible for automatic
// closing: fully paid and, for credit-based packages, all credits consumed.
// consumedCredits comes from the session-consumption collaborator.
func (c *Contract) ShouldAutoClose(consumedCredits int) bool {
	if c.PaymentStatus != PaymentStatusPaid {
		return false
	}
	if !c.IsCreditBased() {
		return true
	}
	return consumedCredits >= c.CreditsTotal
}

// Close marks the contract closed
func (c *Contract) Close() {
	if c.Closed {
		return
	}
	c.Closed = true
	c.Touch()
	c.IncrementVersion()
}

// Reopen clears the closed flag
func (c *Contract) Reopen() {
	if !c.Closed {
		return
	}
	c.Closed = false
	c.Touch()
	c.IncrementVersion()
}

// CanAcceptInstallments returns an error when the contract cannot take new
// installments (closed or deleted)
func (c *Contract) CanAcceptInstallments() error {
	if c.DeletedAt != nil {
		return shared.ErrNotFound
	}
	if c.Closed {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot add installments to a closed contract")
	}
	return nil
}

// VerifyCollectedAgainst checks the denormalized total against the sum of
// installment payments recomputed inside the same transaction. A mismatch
// beyond tolerance is an integrity violation and must abort the operation.
func (c *Contract) VerifyCollectedAgainst(installmentPaidSum decimal.Decimal) error {
	expected := c.DownPayment.Add(installmentPaidSum)
	if c.TotalCollected.Sub(expected).Abs().GreaterThan(AmountTolerance) {
		return shared.NewIntegrityViolation(fmt.Sprintf(
			"contract %s total_collected %s diverges from down_payment + installments %s",
			c.ID, c.TotalCollected.StringFixed(2), expected.StringFixed(2)))
	}
	return nil
}

// SetNotes sets free-form notes
func (c *Contract) SetNotes(notes string) {
	c.Notes = notes
	c.Touch()
	c.IncrementVersion()
}

// recomputePaymentStatus derives PaymentStatus from the collected total
func (c *Contract) recomputePaymentStatus() {
	switch {
	case c.IsFullyCollected():
		c.PaymentStatus = PaymentStatusPaid
	case c.TotalCollected.GreaterThan(AmountTolerance):
		c.PaymentStatus = PaymentStatusPartial
	default:
		c.PaymentStatus = PaymentStatusPending
	}
}
