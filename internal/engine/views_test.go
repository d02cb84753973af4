package engine

import (
	"testing"
	"time"

	"github.com/segyhp/lendtrack/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// book builds a small portfolio evaluated on 2024-01-10
func book() ([]*domain.Member, []*domain.Payment) {
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	// due Jan 8, two days overdue
	asha := newMember(domain.CollectionDaily, date(2024, 1, 1), 100, 3000)
	asha.Name = "Asha"
	asha.Address = "12 Market Road"

	// due today
	bala := newMember(domain.CollectionWeekly, date(2024, 1, 3), 500, 5000)
	bala.Name = "Bala"

	// due in the future
	chitra := newMember(domain.CollectionMonthly, date(2024, 1, 5), 1000, 12000)
	chitra.Name = "Chitra"

	// paid today, next due tomorrow
	dev := newMember(domain.CollectionDaily, date(2024, 1, 1), 100, 3000)
	dev.Name = "Dev"

	// completed members never appear in collection views
	esha := newMember(domain.CollectionDaily, date(2023, 12, 1), 100, 3000)
	esha.Name = "Esha"
	esha.Status = domain.MemberStatusCompleted
	esha.BalanceRemaining = decimal.Zero

	payments := []*domain.Payment{
		payment(asha.ID, 100, date(2024, 1, 7), date(2024, 1, 8), t0.AddDate(0, 0, 6)),
		payment(bala.ID, 0, date(2024, 1, 3), date(2024, 1, 10), t0.AddDate(0, 0, 2)),
		payment(chitra.ID, 0, date(2024, 1, 5), date(2024, 2, 5), t0.AddDate(0, 0, 4)),
		payment(dev.ID, 250, date(2024, 1, 10), date(2024, 1, 11), t0.AddDate(0, 0, 9)),
		payment(esha.ID, 100, date(2024, 1, 10), date(2024, 1, 11), t0.AddDate(0, 0, 9)),
	}
	asha.BalanceRemaining = decimal.NewFromInt(2900)
	dev.BalanceRemaining = decimal.NewFromInt(2750)

	return []*domain.Member{chitra, esha, dev, bala, asha}, payments
}

func names(items []*domain.CollectionItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.MemberName)
	}
	return out
}

func TestTodayCollection(t *testing.T) {
	members, payments := book()
	today := date(2024, 1, 10)

	tests := []struct {
		name      string
		tab       string
		expected  []string
		toCollect int64
		collected int64
	}{
		{name: "all", tab: domain.TabAll, expected: []string{"Asha", "Bala", "Dev"}, toCollect: 800, collected: 250},
		{name: "empty tab means all", tab: "", expected: []string{"Asha", "Bala", "Dev"}, toCollect: 800, collected: 250},
		{name: "overdue", tab: domain.TabOverdue, expected: []string{"Asha"}, toCollect: 300, collected: 0},
		{name: "daily", tab: "daily", expected: []string{"Asha", "Dev"}, toCollect: 300, collected: 250},
		{name: "weekly is case insensitive", tab: " Weekly ", expected: []string{"Bala"}, toCollect: 500, collected: 0},
		{name: "monthly not yet due", tab: "monthly", expected: []string{}, toCollect: 0, collected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := TodayCollection(members, payments, today, tt.tab)

			assert.Equal(t, today, sheet.Date)
			assert.Equal(t, tt.expected, names(sheet.Items))
			assert.True(t, sheet.TotalToCollect.Equal(decimal.NewFromInt(tt.toCollect)), "to collect %s", sheet.TotalToCollect)
			assert.True(t, sheet.TotalCollected.Equal(decimal.NewFromInt(tt.collected)), "collected %s", sheet.TotalCollected)
		})
	}
}

func TestTodayCollection_ItemState(t *testing.T) {
	members, payments := book()

	sheet := TodayCollection(members, payments, date(2024, 1, 10), domain.TabAll)
	require.Len(t, sheet.Items, 3)

	asha := sheet.Items[0]
	assert.Equal(t, date(2024, 1, 8), asha.DueDate)
	assert.Equal(t, 2, asha.UnitsBehind)
	assert.True(t, asha.AmountDue.Equal(decimal.NewFromInt(300)))
	assert.True(t, asha.IsOverdue)

	dev := sheet.Items[2]
	assert.False(t, dev.IsDue)
	assert.True(t, dev.HasPaidToday)
	assert.True(t, dev.AmountDue.IsZero())
}

func TestValidTab(t *testing.T) {
	for _, tab := range []string{"all", "overdue", "daily", "weekly", "10 days", "monthly"} {
		assert.True(t, ValidTab(tab), tab)
	}
	for _, tab := range []string{"yearly", "", "ALL "} {
		assert.False(t, ValidTab(tab), tab)
	}
}

func TestOverdueMembers(t *testing.T) {
	members, payments := book()
	old := newMember(domain.CollectionTenDays, date(2023, 12, 1), 300, 3000)
	old.Name = "Farid"
	members = append(members, old)

	items := OverdueMembers(members, payments, date(2024, 1, 10))

	require.Len(t, items, 2)
	assert.Equal(t, "Farid", items[0].MemberName)
	assert.Equal(t, 40, items[0].DaysOverdue)
	assert.Equal(t, "N/A", items[0].Address)
	assert.Equal(t, "Asha", items[1].MemberName)
	assert.Equal(t, 2, items[1].DaysOverdue)
	assert.Equal(t, "12 Market Road", items[1].Address)
	assert.Equal(t, date(2024, 1, 8), items[1].NextDueDate)
}

func TestSummarize(t *testing.T) {
	members, payments := book()

	stats := Summarize(members, payments, date(2024, 1, 10))

	assert.Equal(t, 5, stats.TotalMembers)
	assert.Equal(t, 4, stats.ActiveMembers)
	assert.Equal(t, 1, stats.OverdueCount)
	assert.True(t, stats.TotalAmountLent.Equal(decimal.NewFromInt(3000+5000+12000+3000+3000)))
	assert.True(t, stats.TotalYetToReceive.Equal(decimal.NewFromInt(2900+5000+12000+2750)))
	// Asha 300 + Bala 500; Dev is not due until tomorrow
	assert.True(t, stats.TodayToReceive.Equal(decimal.NewFromInt(800)))
	// Dev 250 + Esha 100
	assert.True(t, stats.TodayReceived.Equal(decimal.NewFromInt(350)))
}
