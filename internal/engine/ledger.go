package engine

import (
	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupByMember indexes payments by member id, keeping input order per member
func GroupByMember(payments []*domain.Payment) map[uuid.UUID][]*domain.Payment {
	grouped := make(map[uuid.UUID][]*domain.Payment)
	for _, p := range payments {
		if p == nil {
			continue
		}
		grouped[p.MemberID] = append(grouped[p.MemberID], p)
	}
	return grouped
}

// TotalPaid sums every payment of the member
func TotalPaid(memberID uuid.UUID, payments []*domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p != nil && p.MemberID == memberID {
			total = total.Add(p.PaidAmount)
		}
	}
	return total
}

// LedgerBalance folds the payment history into the outstanding balance.
// The ledger is authoritative; members.balance_remaining is a cache of this value.
func LedgerBalance(member *domain.Member, payments []*domain.Payment) decimal.Decimal {
	return utils.MaxDecimal(decimal.Zero, member.TotalPayable.Sub(TotalPaid(member.ID, payments)))
}

// Reconcile derives the member row the ledger implies and reports whether
// the stored row has drifted from it. A closed member stays closed.
func Reconcile(member *domain.Member, payments []*domain.Payment) (domain.MemberUpdate, bool) {
	balance := LedgerBalance(member, payments)
	status := StatusFor(balance)
	if member.Status == domain.MemberStatusClosed {
		status = domain.MemberStatusClosed
	}
	next := CurrentDueDate(member, payments)

	update := domain.MemberUpdate{
		BalanceRemaining: balance,
		Status:           status,
		NextPaymentDate:  next,
	}

	drifted := !member.BalanceRemaining.Equal(balance) ||
		member.Status != status ||
		member.NextPaymentDate == nil ||
		!utils.DateOf(*member.NextPaymentDate).Equal(next)

	return update, drifted
}

// Refreshed returns a copy of member with balance and status taken from the ledger
func Refreshed(member *domain.Member, payments []*domain.Payment) *domain.Member {
	update, drifted := Reconcile(member, payments)
	refreshed := *member
	if drifted {
		update.Apply(&refreshed)
	}
	return &refreshed
}
