package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/segyhp/lendtrack/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const memberColumns = `id, name, phone, address, aadhaar_number, loan_amount, amount_given,
	interest_percentage, collection_type, total_payable, balance_remaining, min_payment_amount,
	start_date, next_payment_date, status, created_at, updated_at`

type memberRepository struct {
	db sqlx.ExtContext
}

func NewMemberRepository(db sqlx.ExtContext) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := r.db.Rebind(`
		INSERT INTO members (` + memberColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.Name,
		member.Phone,
		member.Address,
		member.AadhaarNumber,
		member.LoanAmount,
		member.AmountGiven,
		member.InterestPercentage,
		string(member.CollectionType),
		member.TotalPayable,
		member.BalanceRemaining,
		member.MinPaymentAmount,
		member.StartDate,
		member.NextPaymentDate,
		member.Status,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := r.db.Rebind(`SELECT ` + memberColumns + ` FROM members WHERE id = ?`)

	var member domain.Member
	if err := sqlx.GetContext(ctx, r.db, &member, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &member, nil
}

func (r *memberRepository) List(ctx context.Context, filter domain.MemberFilter) ([]*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members`
	var args []interface{}
	if filter.Status != "" && filter.Status != domain.MemberStatusAll {
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC, id`

	members := []*domain.Member{}
	if err := sqlx.SelectContext(ctx, r.db, &members, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (r *memberRepository) ApplyUpdate(ctx context.Context, id uuid.UUID, update domain.MemberUpdate) error {
	query := `
		UPDATE members
		SET balance_remaining = ?, status = ?, next_payment_date = ?, updated_at = ?
		WHERE id = ?`
	args := []interface{}{
		update.BalanceRemaining,
		update.Status,
		update.NextPaymentDate,
		time.Now().UTC(),
		id,
	}
	if update.IfBalance != nil {
		query += ` AND balance_remaining = ?`
		args = append(args, *update.IfBalance)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	err = expectRows(result)
	if errors.Is(err, ErrNotFound) && update.IfBalance != nil {
		return ErrConflict
	}
	return err
}

func expectRows(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
