package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/segyhp/lendtrack/internal/domain"

	"github.com/jmoiron/sqlx"
)

type adminRepository struct {
	db sqlx.ExtContext
}

func NewAdminRepository(db sqlx.ExtContext) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := r.db.Rebind(`
		INSERT INTO admins (id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query, admin.ID, admin.Username, admin.Email, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := r.db.Rebind(`SELECT id, username, email, password_hash, created_at FROM admins WHERE email = ?`)

	var admin domain.Admin
	if err := sqlx.GetContext(ctx, r.db, &admin, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}
