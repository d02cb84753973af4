package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/pkg/utils"

	"github.com/shopspring/decimal"
)

// Summarize reduces members and payments into the dashboard rollups for today
func Summarize(members []*domain.Member, payments []*domain.Payment, today time.Time) domain.DashboardStats {
	today = utils.DateOf(today)
	byMember := GroupByMember(payments)

	stats := domain.DashboardStats{
		Date:              today,
		TotalMembers:      len(members),
		TotalAmountLent:   decimal.Zero,
		TotalYetToReceive: decimal.Zero,
		TodayToReceive:    decimal.Zero,
		TodayReceived:     decimal.Zero,
	}

	for _, p := range payments {
		if p != nil && utils.DateOf(p.PaidDate).Equal(today) {
			stats.TodayReceived = stats.TodayReceived.Add(p.PaidAmount)
		}
	}

	for _, m := range members {
		stats.TotalAmountLent = stats.TotalAmountLent.Add(m.TotalPayable)
		if !m.IsActive() {
			continue
		}
		stats.ActiveMembers++
		stats.TotalYetToReceive = stats.TotalYetToReceive.Add(m.BalanceRemaining)

		a := Assess(m, byMember[m.ID], today)
		if a.IsOverdue {
			stats.OverdueCount++
		}
		if a.IsDue {
			stats.TodayToReceive = stats.TodayToReceive.Add(a.AmountDue)
		}
	}

	return stats
}

// ValidTab reports whether tab selects a today-collection view
func ValidTab(tab string) bool {
	if tab == domain.TabAll || tab == domain.TabOverdue {
		return true
	}
	return domain.CollectionType(tab).Valid()
}

// TodayCollection lists active members who are due today or earlier, plus
// anyone who already paid today, filtered by tab. Items are ordered by due
// date, oldest first, then by name.
func TodayCollection(members []*domain.Member, payments []*domain.Payment, today time.Time, tab string) domain.CollectionSheet {
	today = utils.DateOf(today)
	tab = strings.ToLower(strings.TrimSpace(tab))
	if tab == "" {
		tab = domain.TabAll
	}
	byMember := GroupByMember(payments)

	sheet := domain.CollectionSheet{
		Date:           today,
		Tab:            tab,
		Items:          []*domain.CollectionItem{},
		TotalToCollect: decimal.Zero,
		TotalCollected: decimal.Zero,
	}

	for _, m := range members {
		if !m.IsActive() {
			continue
		}
		a := Assess(m, byMember[m.ID], today)
		if !a.IsDue && !a.HasPaidToday {
			continue
		}
		if !matchesTab(m, a, tab) {
			continue
		}

		sheet.Items = append(sheet.Items, &domain.CollectionItem{
			MemberID:         m.ID,
			MemberName:       m.Name,
			Phone:            m.Phone,
			CollectionType:   m.CollectionType,
			MinPaymentAmount: m.MinPaymentAmount,
			BalanceRemaining: m.BalanceRemaining,
			Assessment:       a,
		})
		sheet.TotalToCollect = sheet.TotalToCollect.Add(a.AmountDue)
		sheet.TotalCollected = sheet.TotalCollected.Add(a.PaidToday)
	}

	sort.SliceStable(sheet.Items, func(i, j int) bool {
		a, b := sheet.Items[i], sheet.Items[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.MemberName < b.MemberName
	})

	return sheet
}

func matchesTab(m *domain.Member, a domain.Assessment, tab string) bool {
	switch tab {
	case domain.TabAll:
		return true
	case domain.TabOverdue:
		return a.IsOverdue
	default:
		return string(m.CollectionType) == tab
	}
}

// OverdueMembers lists active members whose due date has passed,
// most days overdue first.
func OverdueMembers(members []*domain.Member, payments []*domain.Payment, today time.Time) []*domain.OverdueItem {
	today = utils.DateOf(today)
	byMember := GroupByMember(payments)

	items := []*domain.OverdueItem{}
	for _, m := range members {
		if !m.IsActive() {
			continue
		}
		a := Assess(m, byMember[m.ID], today)
		if !a.IsOverdue {
			continue
		}
		address := m.Address
		if address == "" {
			address = "N/A"
		}
		items = append(items, &domain.OverdueItem{
			MemberID:         m.ID,
			MemberName:       m.Name,
			Phone:            m.Phone,
			Address:          address,
			CollectionType:   m.CollectionType,
			BalanceRemaining: m.BalanceRemaining,
			NextDueDate:      a.DueDate,
			DaysOverdue:      a.DaysOverdue,
			AmountDue:        a.AmountDue,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysOverdue > items[j].DaysOverdue
	})
	return items
}
