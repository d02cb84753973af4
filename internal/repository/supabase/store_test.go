package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/internal/repository"
	"github.com/segyhp/lendtrack/internal/resilience"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cb := resilience.NewCircuitBreaker("supabase-test", nil)
	client := NewClient(srv.Client(), srv.URL+"/", "anon-key", "service-key", cb,
		resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond}, zap.NewNop())
	return NewStore(client)
}

const memberJSON = `[{
	"id": "6f1c2c1e-8a0e-4f7b-9a53-1f4d3c2b1a00",
	"name": "Ravi Kumar",
	"phone": "9876543210",
	"address": "12 Temple Street",
	"aadhaar_number": "",
	"loan_amount": "10000",
	"amount_given": "9000",
	"interest_percentage": "1",
	"collection_type": "daily",
	"total_payable": "10000",
	"balance_remaining": "9800",
	"min_payment_amount": "100",
	"start_date": "2024-01-01",
	"next_payment_date": "2024-01-03",
	"status": "active",
	"created_at": "2024-01-01T04:30:00.123456+00:00",
	"updated_at": "2024-01-02T09:00:00"
}]`

func TestClient_Headers(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/rest/v1/members", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	})

	assert.NoError(t, store.Ping(context.Background()))
}

func TestMemberStore_GetByID(t *testing.T) {
	id := uuid.MustParse("6f1c2c1e-8a0e-4f7b-9a53-1f4d3c2b1a00")

	t.Run("decodes row", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "eq."+id.String(), r.URL.Query().Get("id"))
			_, _ = w.Write([]byte(memberJSON))
		})

		m, err := store.Members().GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, m.ID)
		assert.Equal(t, domain.CollectionDaily, m.CollectionType)
		assert.True(t, m.BalanceRemaining.Equal(decimal.NewFromInt(9800)))
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), m.StartDate)
		require.NotNil(t, m.NextPaymentDate)
		assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), *m.NextPaymentDate)
		assert.Equal(t, 9, m.UpdatedAt.Hour())
	})

	t.Run("empty result is not found", func(t *testing.T) {
		var calls int32
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			_, _ = w.Write([]byte(`[]`))
		})

		_, err := store.Members().GetByID(context.Background(), id)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "not found is not retried")
	})
}

func TestMemberStore_Create(t *testing.T) {
	t.Run("posts row", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))

			var row map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
			assert.Equal(t, "weekly", row["collection_type"])
			assert.Equal(t, "2024-01-01", row["start_date"])
			assert.Equal(t, "1200", row["min_payment_amount"])
			w.WriteHeader(http.StatusCreated)
		})

		err := store.Members().Create(context.Background(), &domain.Member{
			ID:               uuid.New(),
			Name:             "Meena",
			CollectionType:   domain.CollectionWeekly,
			MinPaymentAmount: decimal.NewFromInt(1200),
			StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		})
		assert.NoError(t, err)
	})

	t.Run("conflict is duplicate", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"code":"23505"}`))
		})

		err := store.Members().Create(context.Background(), &domain.Member{ID: uuid.New()})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})
}

func TestMemberStore_ApplyUpdate(t *testing.T) {
	id := uuid.New()
	update := domain.MemberUpdate{
		BalanceRemaining: decimal.Zero,
		Status:           domain.MemberStatusCompleted,
		NextPaymentDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	stored := decimal.NewFromInt(300)

	tests := []struct {
		name      string
		ifBalance *decimal.Decimal
		body      string
		wantErr   error
	}{
		{name: "row changed", body: `[{"id":"` + id.String() + `"}]`},
		{name: "no row", body: `[]`, wantErr: repository.ErrNotFound},
		{name: "balance matches", ifBalance: &stored, body: `[{"id":"` + id.String() + `"}]`},
		{name: "balance moved", ifBalance: &stored, body: `[]`, wantErr: repository.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
				assert.Equal(t, "eq."+id.String(), r.URL.Query().Get("id"))
				if tt.ifBalance != nil {
					assert.Equal(t, "eq.300", r.URL.Query().Get("balance_remaining"))
				} else {
					assert.Empty(t, r.URL.Query().Get("balance_remaining"))
				}

				var patch map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
				assert.Equal(t, "completed", patch["status"])
				assert.Equal(t, "2024-02-01", patch["next_payment_date"])
				assert.NotContains(t, patch, "IfBalance")
				_, _ = w.Write([]byte(tt.body))
			})

			u := update
			u.IfBalance = tt.ifBalance
			err := store.Members().ApplyUpdate(context.Background(), id, u)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMemberStore_ListPaginates(t *testing.T) {
	var requests int32
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		q := r.URL.Query()
		assert.Equal(t, "eq.active", q.Get("status"))

		if q.Get("offset") == "0" {
			rows := make([]memberRow, pageSize)
			for i := range rows {
				rows[i] = memberRow{
					ID:             uuid.NewString(),
					CollectionType: "daily",
					StartDate:      "2024-01-01",
					Status:         "active",
					CreatedAt:      "2024-01-01T00:00:00Z",
				}
			}
			_ = json.NewEncoder(w).Encode(rows)
			return
		}
		_, _ = w.Write([]byte(memberJSON))
	})

	members, err := store.Members().List(context.Background(), domain.MemberFilter{Status: domain.MemberStatusActive})
	require.NoError(t, err)
	assert.Len(t, members, pageSize+1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestPaymentStore(t *testing.T) {
	memberID := uuid.New()

	t.Run("create ignores duplicates", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "id", r.URL.Query().Get("on_conflict"))
			assert.Contains(t, r.Header.Get("Prefer"), "resolution=ignore-duplicates")
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"paid_date":"2024-01-04"`)
			w.WriteHeader(http.StatusCreated)
		})

		err := store.Payments().Create(context.Background(), &domain.Payment{
			ID:              uuid.New(),
			MemberID:        memberID,
			PaidAmount:      decimal.NewFromInt(300),
			PaidDate:        time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
			NextPaymentDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			CreatedAt:       time.Now(),
		})
		assert.NoError(t, err)
	})

	t.Run("list by member", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "eq."+memberID.String(), q.Get("member_id"))
			assert.Equal(t, "paid_date.desc,created_at.desc,id.asc", q.Get("order"))
			_, _ = w.Write([]byte(`[{
				"id": "` + uuid.NewString() + `",
				"member_id": "` + memberID.String() + `",
				"paid_amount": 300,
				"previous_balance": "1000",
				"updated_balance": "700",
				"paid_date": "2024-01-04",
				"next_payment_date": "2024-01-05",
				"created_at": "2024-01-04T10:00:00Z"
			}]`))
		})

		payments, err := store.Payments().ListByMember(context.Background(), memberID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.True(t, payments[0].UpdatedBalance.Equal(decimal.NewFromInt(700)))
		assert.Equal(t, memberID, payments[0].MemberID)
	})

	t.Run("list filters by date", func(t *testing.T) {
		day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "eq.2024-01-10", r.URL.Query().Get("paid_date"))
			assert.Empty(t, r.URL.Query().Get("member_id"))
			assert.Equal(t, "created_at.desc,id.asc", r.URL.Query().Get("order"))
			_, _ = w.Write([]byte(`[]`))
		})

		payments, err := store.Payments().List(context.Background(), domain.PaymentFilter{PaidDate: &day})
		require.NoError(t, err)
		assert.Empty(t, payments)
	})
}

func TestAdminStore_GetByEmail(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/admins", r.URL.Path)
		assert.Equal(t, "eq.owner@lendtrack.com", r.URL.Query().Get("email"))
		_, _ = w.Write([]byte(`[{"id":"` + uuid.NewString() + `","username":"owner","email":"owner@lendtrack.com","password_hash":"$2a$10$x","created_at":"2024-01-01T00:00:00Z"}]`))
	})

	admin, err := store.Admins().GetByEmail(context.Background(), "owner@lendtrack.com")
	require.NoError(t, err)
	assert.Equal(t, "owner", admin.Username)
	assert.Equal(t, "$2a$10$x", admin.PasswordHash)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	payments, err := store.Payments().List(context.Background(), domain.PaymentFilter{})
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_BadRequestNotRetried(t *testing.T) {
	var calls int32
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad filter"}`))
	})

	err := store.Payments().DeleteByMember(context.Background(), uuid.New())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_BreakerOpens(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = store.Ping(ctx)
	}

	err := store.Ping(ctx)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestStore_NotAtomic(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.False(t, store.Atomic())

	var inner repository.Store
	err := store.WithinTx(context.Background(), func(tx repository.Store) error {
		inner = tx
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, store, inner)
}
