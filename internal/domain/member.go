package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectionType is the billing frequency of a member's loan
type CollectionType string

const (
	CollectionDaily   CollectionType = "daily"
	CollectionWeekly  CollectionType = "weekly"
	CollectionTenDays CollectionType = "10 days"
	CollectionMonthly CollectionType = "monthly"
)

// CollectionTypes lists every supported billing frequency
var CollectionTypes = []CollectionType{CollectionDaily, CollectionWeekly, CollectionTenDays, CollectionMonthly}

// ParseCollectionType normalizes case and surrounding space
func ParseCollectionType(s string) (CollectionType, bool) {
	ct := CollectionType(strings.ToLower(strings.TrimSpace(s)))
	return ct, ct.Valid()
}

func (c CollectionType) Valid() bool {
	switch c {
	case CollectionDaily, CollectionWeekly, CollectionTenDays, CollectionMonthly:
		return true
	}
	return false
}

// AutoCalculated reports whether interest and minimum payment are derived from the loan amount
func (c CollectionType) AutoCalculated() bool {
	return c == CollectionDaily || c == CollectionWeekly
}

const (
	MemberStatusActive    = "active"
	MemberStatusCompleted = "completed"
	MemberStatusClosed    = "closed"
)

// MemberStatusAll is the list filter that disables status filtering
const MemberStatusAll = "all"

// Member is a borrower together with their single loan
type Member struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Phone              string          `json:"phone" db:"phone"`
	Address            string          `json:"address" db:"address"`
	AadhaarNumber      string          `json:"aadhaar_number" db:"aadhaar_number"`
	LoanAmount         decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	AmountGiven        decimal.Decimal `json:"amount_given" db:"amount_given"`
	InterestPercentage decimal.Decimal `json:"interest_percentage" db:"interest_percentage"`
	CollectionType     CollectionType  `json:"collection_type" db:"collection_type"`
	TotalPayable       decimal.Decimal `json:"total_payable" db:"total_payable"`
	BalanceRemaining   decimal.Decimal `json:"balance_remaining" db:"balance_remaining"`
	MinPaymentAmount   decimal.Decimal `json:"min_payment_amount" db:"min_payment_amount"`
	StartDate          time.Time       `json:"start_date" db:"start_date"`
	NextPaymentDate    *time.Time      `json:"next_payment_date,omitempty" db:"next_payment_date"`
	Status             string          `json:"status" db:"status"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the member still accepts payments
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}

// IsTerminal reports whether the loan has been settled or closed
func (m *Member) IsTerminal() bool {
	return m.Status == MemberStatusCompleted || m.Status == MemberStatusClosed
}

// MemberUpdate is the only mutation a member row receives after creation
type MemberUpdate struct {
	BalanceRemaining decimal.Decimal `json:"balance_remaining"`
	Status           string          `json:"status"`
	NextPaymentDate  time.Time       `json:"next_payment_date"`
	// IfBalance, when set, makes the write conditional on the stored balance still matching it
	IfBalance *decimal.Decimal `json:"-"`
}

// Apply copies the update onto m
func (u MemberUpdate) Apply(m *Member) {
	next := u.NextPaymentDate
	m.BalanceRemaining = u.BalanceRemaining
	m.Status = u.Status
	m.NextPaymentDate = &next
}

// MemberFilter narrows member listings
type MemberFilter struct {
	Status string
}

// DTOs for requests and responses

type CreateMemberRequest struct {
	Name               string           `json:"name" validate:"required,max=120"`
	Phone              string           `json:"phone" validate:"required,len=10,number"`
	Address            string           `json:"address" validate:"max=255"`
	AadhaarNumber      string           `json:"aadhaar_number" validate:"omitempty,max=12,number"`
	CollectionType     string           `json:"collection_type" validate:"required,collection_type"`
	LoanAmount         decimal.Decimal  `json:"loan_amount" validate:"gt=0"`
	AmountGiven        decimal.Decimal  `json:"amount_given" validate:"gte=0"`
	InterestPercentage *decimal.Decimal `json:"interest_percentage,omitempty" validate:"omitempty,gte=0"`
	MinPaymentAmount   *decimal.Decimal `json:"min_payment_amount,omitempty" validate:"omitempty,gte=0"`
	StartDate          string           `json:"start_date" validate:"required,datetime=2006-01-02"`
}

type CreateMemberResponse struct {
	Member         *Member  `json:"member"`
	OpeningPayment *Payment `json:"opening_payment"`
}

type MemberDetail struct {
	Member       *Member         `json:"member"`
	Assessment   Assessment      `json:"assessment"`
	Transactions []*Payment      `json:"transactions"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	// LedgerBalance is the balance folded from the payment history
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
}
