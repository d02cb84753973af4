// Package engine computes due dates and amounts owed for members from their
// payment ledger. Every function is pure: callers pass the rows they fetched
// and the calendar date to evaluate, and nothing is read from a clock or store.
//
// Dates are calendar dates. Inputs are normalized with utils.DateOf before any
// comparison, so time-of-day never participates.
package engine

import (
	"time"

	"github.com/segyhp/lendtrack/internal/domain"
	customError "github.com/segyhp/lendtrack/pkg/errors"
	"github.com/segyhp/lendtrack/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NextBillingDate advances date by exactly one billing period.
//
// Monthly uses calendar month addition with overflow normalization, so
// Jan 31 + 1 month is Mar 2 in a leap year and Mar 3 otherwise.
// Unknown collection types advance by one day, like daily.
func NextBillingDate(date time.Time, collectionType domain.CollectionType) time.Time {
	d := utils.DateOf(date)
	switch collectionType {
	case domain.CollectionWeekly:
		return d.AddDate(0, 0, 7)
	case domain.CollectionTenDays:
		return d.AddDate(0, 0, 10)
	case domain.CollectionMonthly:
		return d.AddDate(0, 1, 0)
	default:
		return d.AddDate(0, 0, 1)
	}
}

// LatestPayment returns the most recent payment of member, or nil.
// Recency is createdAt, then paidDate; on a full tie the earlier slice element wins.
func LatestPayment(memberID uuid.UUID, payments []*domain.Payment) *domain.Payment {
	var latest *domain.Payment
	for _, p := range payments {
		if p == nil || p.MemberID != memberID {
			continue
		}
		if latest == nil ||
			p.CreatedAt.After(latest.CreatedAt) ||
			(p.CreatedAt.Equal(latest.CreatedAt) && utils.DateOf(p.PaidDate).After(utils.DateOf(latest.PaidDate))) {
			latest = p
		}
	}
	return latest
}

// CurrentDueDate is the date the member is next expected to pay: the
// nextPaymentDate of their latest payment, else the member's cached
// nextPaymentDate, else their start date.
func CurrentDueDate(member *domain.Member, payments []*domain.Payment) time.Time {
	if latest := LatestPayment(member.ID, payments); latest != nil {
		return utils.DateOf(latest.NextPaymentDate)
	}
	if member.NextPaymentDate != nil && !member.NextPaymentDate.IsZero() {
		return utils.DateOf(*member.NextPaymentDate)
	}
	return utils.DateOf(member.StartDate)
}

// UnitsBehind counts billing units elapsed since dueDate.
// Weekly members count whole weeks; every other type counts days.
// A due date in the future yields 0.
func UnitsBehind(dueDate, today time.Time, collectionType domain.CollectionType) int {
	diffDays := utils.DaysBetween(dueDate, today)
	if diffDays < 0 {
		return 0
	}
	if collectionType == domain.CollectionWeekly {
		return diffDays / 7
	}
	return diffDays
}

// IsOverdue is true iff dueDate is strictly before today.
// A member due today is due, not overdue.
func IsOverdue(dueDate, today time.Time) bool {
	return utils.DateOf(dueDate).Before(utils.DateOf(today))
}

// IsDue is true when dueDate is today or earlier
func IsDue(dueDate, today time.Time) bool {
	return !utils.DateOf(dueDate).After(utils.DateOf(today))
}

// PaidOn sums paidAmount over the member's payments attributed to date
func PaidOn(payments []*domain.Payment, memberID uuid.UUID, date time.Time) decimal.Decimal {
	day := utils.DateOf(date)
	total := decimal.Zero
	for _, p := range payments {
		if p == nil || p.MemberID != memberID {
			continue
		}
		if utils.DateOf(p.PaidDate).Equal(day) {
			total = total.Add(p.PaidAmount)
		}
	}
	return total
}

// AmountDueToday is what the member still owes today:
// minPaymentAmount * (unitsBehind + 1) less what was already paid today, floored at 0.
// Members not yet due owe nothing.
func AmountDueToday(member *domain.Member, dueDate, today time.Time, paidToday decimal.Decimal) decimal.Decimal {
	if !IsDue(dueDate, today) {
		return decimal.Zero
	}
	units := UnitsBehind(dueDate, today, member.CollectionType)
	target := member.MinPaymentAmount.Mul(decimal.NewFromInt(int64(units + 1)))
	return utils.MaxDecimal(decimal.Zero, target.Sub(paidToday))
}

// Assess evaluates one member on today
func Assess(member *domain.Member, payments []*domain.Payment, today time.Time) domain.Assessment {
	today = utils.DateOf(today)
	due := CurrentDueDate(member, payments)
	paidToday := PaidOn(payments, member.ID, today)

	a := domain.Assessment{
		DueDate:      due,
		IsDue:        IsDue(due, today),
		IsOverdue:    IsOverdue(due, today),
		UnitsBehind:  UnitsBehind(due, today, member.CollectionType),
		PaidToday:    paidToday,
		HasPaidToday: paidToday.IsPositive(),
		AmountDue:    AmountDueToday(member, due, today, paidToday),
	}
	if a.IsOverdue {
		a.DaysOverdue = utils.DaysBetween(due, today)
	}
	return a
}

// OpeningPayment is the zero-amount row that seeds a new member's due-date chain
func OpeningPayment(member *domain.Member, now time.Time) *domain.Payment {
	start := utils.DateOf(member.StartDate)
	return &domain.Payment{
		ID:              uuid.New(),
		MemberID:        member.ID,
		PaidAmount:      decimal.Zero,
		PreviousBalance: member.TotalPayable,
		UpdatedBalance:  member.TotalPayable,
		PaidDate:        start,
		NextPaymentDate: NextBillingDate(start, member.CollectionType),
		CreatedAt:       now,
	}
}

// StatusFor derives the member status from a balance
func StatusFor(balance decimal.Decimal) string {
	if balance.LessThanOrEqual(decimal.Zero) {
		return domain.MemberStatusCompleted
	}
	return domain.MemberStatusActive
}

// RecordPayment builds the payment row and member update for a repayment of
// paidAmount made on today. It writes nothing.
func RecordPayment(member *domain.Member, payments []*domain.Payment, paidAmount decimal.Decimal, today, now time.Time) (*domain.Payment, domain.MemberUpdate, error) {
	if member.IsTerminal() || !member.BalanceRemaining.IsPositive() {
		return nil, domain.MemberUpdate{}, customError.WrapMemberCompleted(member.ID.String())
	}
	if !paidAmount.IsPositive() || !utils.IsMoneyScale(paidAmount) {
		return nil, domain.MemberUpdate{}, customError.WrapInvalidPaymentAmount(paidAmount.String())
	}
	if paidAmount.GreaterThan(member.BalanceRemaining) {
		return nil, domain.MemberUpdate{}, customError.WrapPaymentExceedsBalance(paidAmount.String(), member.BalanceRemaining.String())
	}

	due := CurrentDueDate(member, payments)
	next := NextBillingDate(due, member.CollectionType)
	newBalance := utils.MaxDecimal(decimal.Zero, member.BalanceRemaining.Sub(paidAmount))

	payment := &domain.Payment{
		ID:              uuid.New(),
		MemberID:        member.ID,
		PaidAmount:      paidAmount,
		PreviousBalance: member.BalanceRemaining,
		UpdatedBalance:  newBalance,
		PaidDate:        utils.DateOf(today),
		NextPaymentDate: next,
		CreatedAt:       now,
	}
	update := domain.MemberUpdate{
		BalanceRemaining: newBalance,
		Status:           StatusFor(newBalance),
		NextPaymentDate:  next,
	}
	return payment, update, nil
}
