package registry

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/domain/shared/valueobject"
)

// Payment represents a tuition payment recorded against a student.
// Each payment belongs to exactly one student and carries a snapshot of
// the balance that remained after it was applied. Payments are only
// created and mutated through the Student aggregate's ledger methods.
type Payment struct {
	shared.BaseEntity
	StudentID       uuid.UUID       `json:"student_id"`
	Amount          decimal.Decimal `json:"amount"`
	Comment         string          `json:"comment"`
	AmountInWords   string          `json:"amount_in_words"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"` // balance after this payment was applied
	PaidAt          time.Time       `json:"paid_at"`
}

// NewPayment creates a payment record. Validation happens in
// Student.RecordPayment; this constructor only assembles the entity.
func NewPayment(studentID uuid.UUID, amount valueobject.Money, comment, amountInWords string, remaining decimal.Decimal, paidAt time.Time) *Payment {
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		StudentID:       studentID,
		Amount:          amount.Amount(),
		Comment:         comment,
		AmountInWords:   amountInWords,
		RemainingAmount: remaining,
		PaidAt:          paidAt,
	}
}

// Amend replaces the payment's amount and annotations and refreshes the
// remaining-balance snapshot
func (p *Payment) Amend(amount valueobject.Money, comment, amountInWords string, remaining decimal.Decimal) {
	p.Amount = amount.Amount()
	p.Comment = comment
	p.AmountInWords = amountInWords
	p.RemainingAmount = remaining
	p.UpdatedAt = time.Now()
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEGP(p.Amount)
}

// GetRemainingAmountMoney returns the remaining-balance snapshot as Money
func (p *Payment) GetRemainingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEGP(p.RemainingAmount)
}
