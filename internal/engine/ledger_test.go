package engine

import (
	"testing"
	"time"

	"github.com/segyhp/lendtrack/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByMember(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	payments := []*domain.Payment{
		payment(a, 100, date(2024, 1, 1), date(2024, 1, 2), t0),
		nil,
		payment(b, 50, date(2024, 1, 1), date(2024, 1, 8), t0),
		payment(a, 200, date(2024, 1, 2), date(2024, 1, 3), t0.Add(time.Hour)),
	}

	grouped := GroupByMember(payments)

	require.Len(t, grouped, 2)
	require.Len(t, grouped[a], 2)
	assert.Same(t, payments[0], grouped[a][0])
	assert.Same(t, payments[3], grouped[a][1])
	assert.Len(t, grouped[b], 1)
}

func TestLedgerBalance(t *testing.T) {
	m := newMember(domain.CollectionDaily, date(2024, 1, 1), 100, 3000)
	other := uuid.New()
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		payments []*domain.Payment
		expected int64
	}{
		{name: "empty ledger", payments: nil, expected: 3000},
		{
			name: "opening row only",
			payments: []*domain.Payment{
				OpeningPayment(m, t0),
			},
			expected: 3000,
		},
		{
			name: "ignores other members",
			payments: []*domain.Payment{
				OpeningPayment(m, t0),
				payment(m.ID, 400, date(2024, 1, 2), date(2024, 1, 3), t0.Add(time.Hour)),
				payment(other, 900, date(2024, 1, 2), date(2024, 1, 3), t0.Add(time.Hour)),
			},
			expected: 2600,
		},
		{
			name: "overpaid ledger floors at zero",
			payments: []*domain.Payment{
				payment(m.ID, 2000, date(2024, 1, 2), date(2024, 1, 3), t0),
				payment(m.ID, 2000, date(2024, 1, 3), date(2024, 1, 4), t0.Add(time.Hour)),
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LedgerBalance(m, tt.payments)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.expected)), "expected %d, got %s", tt.expected, got)
		})
	}
}

func TestLedgerBalance_ConsistentWithRecordPayment(t *testing.T) {
	m := newMember(domain.CollectionWeekly, date(2024, 1, 1), 500, 5000)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	ledger := []*domain.Payment{OpeningPayment(m, now)}

	for i, amount := range []int64{500, 750, 250, 1500, 1000, 1000} {
		now = now.Add(time.Hour)
		today := date(2024, 1, 1).AddDate(0, 0, 7*(i+1))

		p, update, err := RecordPayment(m, ledger, decimal.NewFromInt(amount), today, now)
		require.NoError(t, err)
		ledger = append(ledger, p)
		update.Apply(m)

		require.True(t, m.BalanceRemaining.Equal(LedgerBalance(m, ledger)), "after payment %d", i)
		_, drifted := Reconcile(m, ledger)
		require.False(t, drifted, "after payment %d", i)
	}

	assert.Equal(t, domain.MemberStatusCompleted, m.Status)
	assert.True(t, m.BalanceRemaining.IsZero())
}

func TestReconcile(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("row matches ledger", func(t *testing.T) {
		m := newMember(domain.CollectionDaily, date(2024, 1, 1), 100, 3000)
		opening := OpeningPayment(m, t0)
		m.NextPaymentDate = &opening.NextPaymentDate

		_, drifted := Reconcile(m, []*domain.Payment{opening})
		assert.False(t, drifted)
	})

	t.Run("stale balance is corrected", func(t *testing.T) {
		m := newMember(domain.CollectionDaily, date(2024, 1, 1), 100, 3000)
		opening := OpeningPayment(m, t0)
		paid := payment(m.ID, 300, date(2024, 1, 2), date(2024, 1, 3), t0.Add(time.Hour))
		m.NextPaymentDate = &opening.NextPaymentDate

		update, drifted := Reconcile(m, []*domain.Payment{opening, paid})

		assert.True(t, drifted)
		assert.True(t, update.BalanceRemaining.Equal(decimal.NewFromInt(2700)))
		assert.Equal(t, domain.MemberStatusActive, update.Status)
		assert.Equal(t, date(2024, 1, 3), update.NextPaymentDate)
	})

	t.Run("settled ledger completes the member", func(t *testing.T) {
		m := newMember(domain.CollectionDaily, date(2024, 1, 1), 100, 300)
		paid := payment(m.ID, 300, date(2024, 1, 2), date(2024, 1, 3), t0)

		update, drifted := Reconcile(m, []*domain.Payment{paid})

		assert.True(t, drifted)
		assert.True(t, update.BalanceRemaining.IsZero())
		assert.Equal(t, domain.MemberStatusCompleted, update.Status)
	})

	t.Run("closed stays closed", func(t *testing.T) {
		m := newMember(domain.CollectionDaily, date(2024, 1, 1), 100, 3000)
		m.Status = domain.MemberStatusClosed

		update, _ := Reconcile(m, nil)
		assert.Equal(t, domain.MemberStatusClosed, update.Status)
	})

	t.Run("missing next date counts as drift", func(t *testing.T) {
		m := newMember(domain.CollectionDaily, date(2024, 1, 1), 100, 3000)

		update, drifted := Reconcile(m, nil)
		assert.True(t, drifted)
		assert.Equal(t, date(2024, 1, 1), update.NextPaymentDate)
	})
}

func TestRefreshed(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m := newMember(domain.CollectionDaily, date(2024, 1, 1), 100, 3000)
	paid := payment(m.ID, 1000, date(2024, 1, 2), date(2024, 1, 3), t0)

	refreshed := Refreshed(m, []*domain.Payment{paid})

	assert.NotSame(t, m, refreshed)
	assert.True(t, refreshed.BalanceRemaining.Equal(decimal.NewFromInt(2000)))
	assert.True(t, m.BalanceRemaining.Equal(decimal.NewFromInt(3000)), "input left untouched")
	require.NotNil(t, refreshed.NextPaymentDate)
	assert.Equal(t, date(2024, 1, 3), *refreshed.NextPaymentDate)
}
