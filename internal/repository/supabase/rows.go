package supabase

import (
	"fmt"
	"time"

	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memberRow maps the members table columns.
type memberRow struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Phone              string          `json:"phone"`
	Address            string          `json:"address"`
	AadhaarNumber      string          `json:"aadhaar_number"`
	LoanAmount         decimal.Decimal `json:"loan_amount"`
	AmountGiven        decimal.Decimal `json:"amount_given"`
	InterestPercentage decimal.Decimal `json:"interest_percentage"`
	CollectionType     string          `json:"collection_type"`
	TotalPayable       decimal.Decimal `json:"total_payable"`
	BalanceRemaining   decimal.Decimal `json:"balance_remaining"`
	MinPaymentAmount   decimal.Decimal `json:"min_payment_amount"`
	StartDate          string          `json:"start_date"`
	NextPaymentDate    *string         `json:"next_payment_date"`
	Status             string          `json:"status"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

// paymentRow maps the payments table columns.
type paymentRow struct {
	ID              string          `json:"id"`
	MemberID        string          `json:"member_id"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	UpdatedBalance  decimal.Decimal `json:"updated_balance"`
	PaidDate        string          `json:"paid_date"`
	NextPaymentDate string          `json:"next_payment_date"`
	CreatedAt       string          `json:"created_at"`
}

// adminRow maps the admins table columns.
type adminRow struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    string `json:"created_at"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// PostgREST omits the offset for timestamp without time zone
		t, err = time.Parse("2006-01-02T15:04:05.999999999", s)
	}
	return t, err
}

func newMemberRow(m *domain.Member) memberRow {
	row := memberRow{
		ID:                 m.ID.String(),
		Name:               m.Name,
		Phone:              m.Phone,
		Address:            m.Address,
		AadhaarNumber:      m.AadhaarNumber,
		LoanAmount:         m.LoanAmount,
		AmountGiven:        m.AmountGiven,
		InterestPercentage: m.InterestPercentage,
		CollectionType:     string(m.CollectionType),
		TotalPayable:       m.TotalPayable,
		BalanceRemaining:   m.BalanceRemaining,
		MinPaymentAmount:   m.MinPaymentAmount,
		StartDate:          utils.FormatDate(m.StartDate),
		Status:             m.Status,
		CreatedAt:          formatTimestamp(m.CreatedAt),
		UpdatedAt:          formatTimestamp(m.UpdatedAt),
	}
	if m.NextPaymentDate != nil {
		next := utils.FormatDate(*m.NextPaymentDate)
		row.NextPaymentDate = &next
	}
	return row
}

func (r memberRow) toDomain() (*domain.Member, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("member id %q: %w", r.ID, err)
	}
	start, err := utils.ParseDate(r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("member %s start_date: %w", r.ID, err)
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("member %s created_at: %w", r.ID, err)
	}
	updated, err := parseTimestamp(r.UpdatedAt)
	if err != nil {
		updated = created
	}

	m := &domain.Member{
		ID:                 id,
		Name:               r.Name,
		Phone:              r.Phone,
		Address:            r.Address,
		AadhaarNumber:      r.AadhaarNumber,
		LoanAmount:         r.LoanAmount,
		AmountGiven:        r.AmountGiven,
		InterestPercentage: r.InterestPercentage,
		CollectionType:     domain.CollectionType(r.CollectionType),
		TotalPayable:       r.TotalPayable,
		BalanceRemaining:   r.BalanceRemaining,
		MinPaymentAmount:   r.MinPaymentAmount,
		StartDate:          start,
		Status:             r.Status,
		CreatedAt:          created,
		UpdatedAt:          updated,
	}
	if r.NextPaymentDate != nil && *r.NextPaymentDate != "" {
		next, err := utils.ParseDate(*r.NextPaymentDate)
		if err != nil {
			return nil, fmt.Errorf("member %s next_payment_date: %w", r.ID, err)
		}
		m.NextPaymentDate = &next
	}
	return m, nil
}

func newPaymentRow(p *domain.Payment) paymentRow {
	return paymentRow{
		ID:              p.ID.String(),
		MemberID:        p.MemberID.String(),
		PaidAmount:      p.PaidAmount,
		PreviousBalance: p.PreviousBalance,
		UpdatedBalance:  p.UpdatedBalance,
		PaidDate:        utils.FormatDate(p.PaidDate),
		NextPaymentDate: utils.FormatDate(p.NextPaymentDate),
		CreatedAt:       formatTimestamp(p.CreatedAt),
	}
}

func (r paymentRow) toDomain() (*domain.Payment, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("payment id %q: %w", r.ID, err)
	}
	memberID, err := uuid.Parse(r.MemberID)
	if err != nil {
		return nil, fmt.Errorf("payment %s member_id: %w", r.ID, err)
	}
	paid, err := utils.ParseDate(r.PaidDate)
	if err != nil {
		return nil, fmt.Errorf("payment %s paid_date: %w", r.ID, err)
	}
	next, err := utils.ParseDate(r.NextPaymentDate)
	if err != nil {
		return nil, fmt.Errorf("payment %s next_payment_date: %w", r.ID, err)
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("payment %s created_at: %w", r.ID, err)
	}

	return &domain.Payment{
		ID:              id,
		MemberID:        memberID,
		PaidAmount:      r.PaidAmount,
		PreviousBalance: r.PreviousBalance,
		UpdatedBalance:  r.UpdatedBalance,
		PaidDate:        paid,
		NextPaymentDate: next,
		CreatedAt:       created,
	}, nil
}

func newAdminRow(a *domain.Admin) adminRow {
	return adminRow{
		ID:           a.ID.String(),
		Username:     a.Username,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    formatTimestamp(a.CreatedAt),
	}
}

func (r adminRow) toDomain() (*domain.Admin, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("admin id %q: %w", r.ID, err)
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("admin %s created_at: %w", r.ID, err)
	}
	return &domain.Admin{
		ID:           id,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    created,
	}, nil
}
