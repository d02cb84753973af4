package repository

import (
	"context"
	"fmt"

	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const paymentColumns = `id, member_id, paid_amount, previous_balance, updated_balance,
	paid_date, next_payment_date, created_at`

type paymentRepository struct {
	db sqlx.ExtContext
}

func NewPaymentRepository(db sqlx.ExtContext) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := r.db.Rebind(`
		INSERT INTO payments (` + paymentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.MemberID,
		payment.PaidAmount,
		payment.PreviousBalance,
		payment.UpdatedBalance,
		utils.DateOf(payment.PaidDate),
		utils.DateOf(payment.NextPaymentDate),
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Payment, error) {
	query := r.db.Rebind(`
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE member_id = ?
		ORDER BY paid_date DESC, created_at DESC
	`)

	payments := []*domain.Payment{}
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, memberID); err != nil {
		return nil, fmt.Errorf("list member payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1 = 1`
	var args []interface{}
	if filter.MemberID != nil {
		query += ` AND member_id = ?`
		args = append(args, *filter.MemberID)
	}
	if filter.PaidDate != nil {
		query += ` AND paid_date = ?`
		args = append(args, utils.DateOf(*filter.PaidDate))
	}
	query += ` ORDER BY created_at DESC`

	payments := []*domain.Payment{}
	if err := sqlx.SelectContext(ctx, r.db, &payments, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) DeleteByMember(ctx context.Context, memberID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM payments WHERE member_id = ?`), memberID)
	if err != nil {
		return fmt.Errorf("delete member payments: %w", err)
	}
	return nil
}
