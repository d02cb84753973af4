package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Assessment is the collection state of one member on one calendar day
type Assessment struct {
	DueDate      time.Time       `json:"due_date"`
	IsDue        bool            `json:"is_due"`
	IsOverdue    bool            `json:"is_overdue"`
	UnitsBehind  int             `json:"units_behind"`
	DaysOverdue  int             `json:"days_overdue"`
	PaidToday    decimal.Decimal `json:"paid_today"`
	HasPaidToday bool            `json:"has_paid_today"`
	AmountDue    decimal.Decimal `json:"amount_due"`
}

// Today-collection tabs; any collection type value is also a valid tab
const (
	TabAll     = "all"
	TabOverdue = "overdue"
)

type CollectionItem struct {
	MemberID         uuid.UUID       `json:"member_id"`
	MemberName       string          `json:"member_name"`
	Phone            string          `json:"phone"`
	CollectionType   CollectionType  `json:"collection_type"`
	MinPaymentAmount decimal.Decimal `json:"min_payment_amount"`
	BalanceRemaining decimal.Decimal `json:"balance_remaining"`
	Assessment
}

type CollectionSheet struct {
	Date           time.Time         `json:"date"`
	Tab            string            `json:"tab"`
	Items          []*CollectionItem `json:"items"`
	TotalToCollect decimal.Decimal   `json:"total_to_collect"`
	TotalCollected decimal.Decimal   `json:"total_collected"`
}

type OverdueItem struct {
	MemberID         uuid.UUID       `json:"member_id"`
	MemberName       string          `json:"member_name"`
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	CollectionType   CollectionType  `json:"collection_type"`
	BalanceRemaining decimal.Decimal `json:"balance_remaining"`
	NextDueDate      time.Time       `json:"next_due_date"`
	DaysOverdue      int             `json:"days_overdue"`
	AmountDue        decimal.Decimal `json:"amount_due"`
}

type DashboardStats struct {
	Date              time.Time       `json:"date"`
	TotalMembers      int             `json:"total_members"`
	ActiveMembers     int             `json:"active_members"`
	TotalAmountLent   decimal.Decimal `json:"total_amount_lent"`
	TotalYetToReceive decimal.Decimal `json:"total_yet_to_receive"`
	TodayToReceive    decimal.Decimal `json:"today_to_receive"`
	TodayReceived     decimal.Decimal `json:"today_received"`
	OverdueCount      int             `json:"overdue_count"`
}

type ReconcileReport struct {
	Checked   int         `json:"checked"`
	Corrected int         `json:"corrected"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}
