package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is one append-only ledger row recorded against a member
type Payment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	MemberID        uuid.UUID       `json:"member_id" db:"member_id"`
	PaidAmount      decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance" db:"previous_balance"`
	UpdatedBalance  decimal.Decimal `json:"updated_balance" db:"updated_balance"`
	PaidDate        time.Time       `json:"paid_date" db:"paid_date"`
	NextPaymentDate time.Time       `json:"next_payment_date" db:"next_payment_date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// IsOpening reports whether p is the synthetic zero-amount row written at member creation
func (p *Payment) IsOpening() bool {
	return p.PaidAmount.IsZero()
}

// PaymentFilter narrows payment listings; zero values mean "any"
type PaymentFilter struct {
	MemberID *uuid.UUID
	PaidDate *time.Time
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
	Member  *Member  `json:"member"`
}
