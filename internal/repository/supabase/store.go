package supabase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/internal/repository"
	"github.com/segyhp/lendtrack/internal/resilience"
	"github.com/segyhp/lendtrack/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// pageSize stays under the PostgREST max-rows default of Supabase projects
const pageSize = 1000

// Store implements repository.Store; writes inside WithinTx are applied one by one.
type Store struct {
	client   *Client
	members  *memberStore
	payments *paymentStore
	admins   *adminStore
}

func NewStore(client *Client) *Store {
	return &Store{
		client:   client,
		members:  &memberStore{c: client},
		payments: &paymentStore{c: client},
		admins:   &adminStore{c: client},
	}
}

func (s *Store) Members() repository.MemberRepository   { return s.members }
func (s *Store) Payments() repository.PaymentRepository { return s.payments }
func (s *Store) Admins() repository.AdminRepository     { return s.admins }
func (s *Store) Atomic() bool                           { return false }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(s)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// ============================================================
// Members
// ============================================================

type memberStore struct {
	c *Client
}

func (s *memberStore) Create(ctx context.Context, member *domain.Member) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateMember")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", member.ID.String()))

	return s.c.call(ctx, func() error {
		return s.c.doPost(ctx, "members", newMemberRow(member), "return=minimal")
	})
}

func (s *memberStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetMember")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", id.String()))

	q := url.Values{}
	q.Set("id", "eq."+id.String())
	q.Set("limit", "1")

	var member *domain.Member
	err := s.c.call(ctx, func() error {
		var rows []memberRow
		if err := s.c.doGet(ctx, "members?"+q.Encode(), &rows); err != nil {
			return err
		}
		if len(rows) == 0 {
			return resilience.Permanent(repository.ErrNotFound)
		}
		m, err := rows[0].toDomain()
		if err != nil {
			return resilience.Permanent(err)
		}
		member = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberStore) List(ctx context.Context, filter domain.MemberFilter) ([]*domain.Member, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListMembers")
	defer span.End()

	q := url.Values{}
	if filter.Status != "" && filter.Status != domain.MemberStatusAll {
		q.Set("status", "eq."+filter.Status)
	}
	q.Set("order", "created_at.desc,id.asc")

	members := []*domain.Member{}
	err := listPages(ctx, s.c, "members", q, func(rows []memberRow) error {
		for _, r := range rows {
			m, err := r.toDomain()
			if err != nil {
				return err
			}
			members = append(members, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (s *memberStore) ApplyUpdate(ctx context.Context, id uuid.UUID, update domain.MemberUpdate) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateMember")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", id.String()))

	path := "members?id=eq." + id.String()
	if update.IfBalance != nil {
		path += "&balance_remaining=eq." + update.IfBalance.String()
	}

	return s.c.call(ctx, func() error {
		n, err := s.c.doPatch(ctx, path, map[string]any{
			"balance_remaining": update.BalanceRemaining,
			"status":            update.Status,
			"next_payment_date": utils.FormatDate(update.NextPaymentDate),
			"updated_at":        formatTimestamp(time.Now()),
		})
		if err != nil {
			return err
		}
		if n == 0 && update.IfBalance != nil {
			return resilience.Permanent(repository.ErrConflict)
		}
		if n == 0 {
			return resilience.Permanent(repository.ErrNotFound)
		}
		return nil
	})
}

func (s *memberStore) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteMember")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", id.String()))

	return s.c.call(ctx, func() error {
		n, err := s.c.doDelete(ctx, "members?id=eq."+id.String())
		if err != nil {
			return err
		}
		if n == 0 {
			return resilience.Permanent(repository.ErrNotFound)
		}
		return nil
	})
}

// ============================================================
// Payments
// ============================================================

type paymentStore struct {
	c *Client
}

// Create is idempotent on the payment id, so a retried insert that already
// landed is not recorded twice.
func (s *paymentStore) Create(ctx context.Context, payment *domain.Payment) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreatePayment")
	defer span.End()
	span.SetAttributes(
		attribute.String("member.id", payment.MemberID.String()),
		attribute.String("payment.amount", payment.PaidAmount.String()),
	)

	return s.c.call(ctx, func() error {
		return s.c.doPost(ctx, "payments?on_conflict=id", newPaymentRow(payment), "return=minimal,resolution=ignore-duplicates")
	})
}

func (s *paymentStore) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListMemberPayments")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", memberID.String()))

	q := url.Values{}
	q.Set("member_id", "eq."+memberID.String())
	q.Set("order", "paid_date.desc,created_at.desc,id.asc")
	return s.list(ctx, q)
}

func (s *paymentStore) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPayments")
	defer span.End()

	q := url.Values{}
	if filter.MemberID != nil {
		q.Set("member_id", "eq."+filter.MemberID.String())
	}
	if filter.PaidDate != nil {
		q.Set("paid_date", "eq."+utils.FormatDate(*filter.PaidDate))
	}
	q.Set("order", "created_at.desc,id.asc")
	return s.list(ctx, q)
}

func (s *paymentStore) list(ctx context.Context, q url.Values) ([]*domain.Payment, error) {
	payments := []*domain.Payment{}
	err := listPages(ctx, s.c, "payments", q, func(rows []paymentRow) error {
		for _, r := range rows {
			p, err := r.toDomain()
			if err != nil {
				return err
			}
			payments = append(payments, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *paymentStore) DeleteByMember(ctx context.Context, memberID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteMemberPayments")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", memberID.String()))

	return s.c.call(ctx, func() error {
		_, err := s.c.doDelete(ctx, "payments?member_id=eq."+memberID.String())
		return err
	})
}

// ============================================================
// Admins
// ============================================================

type adminStore struct {
	c *Client
}

func (s *adminStore) Create(ctx context.Context, admin *domain.Admin) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAdmin")
	defer span.End()

	return s.c.call(ctx, func() error {
		return s.c.doPost(ctx, "admins", newAdminRow(admin), "return=minimal")
	})
}

func (s *adminStore) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAdmin")
	defer span.End()

	q := url.Values{}
	q.Set("email", "eq."+email)
	q.Set("limit", "1")

	var admin *domain.Admin
	err := s.c.call(ctx, func() error {
		var rows []adminRow
		if err := s.c.doGet(ctx, "admins?"+q.Encode(), &rows); err != nil {
			return err
		}
		if len(rows) == 0 {
			return resilience.Permanent(repository.ErrNotFound)
		}
		a, err := rows[0].toDomain()
		if err != nil {
			return resilience.Permanent(err)
		}
		admin = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// listPages reads table page by page until a short page, handing each page to fn.
// Each page is its own retried call.
func listPages[R any](ctx context.Context, c *Client, table string, q url.Values, fn func(rows []R) error) error {
	for offset := 0; ; offset += pageSize {
		page := url.Values{}
		for k, v := range q {
			page[k] = v
		}
		page.Set("limit", strconv.Itoa(pageSize))
		page.Set("offset", strconv.Itoa(offset))

		var rows []R
		err := c.call(ctx, func() error {
			rows = nil
			return c.doGet(ctx, table+"?"+page.Encode(), &rows)
		})
		if err != nil {
			return err
		}
		if err := fn(rows); err != nil {
			return fmt.Errorf("decode %s: %w", table, err)
		}
		if len(rows) < pageSize {
			return nil
		}
	}
}
