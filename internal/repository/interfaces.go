package repository

import (
	"context"
	"errors"

	"github.com/segyhp/lendtrack/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when the addressed row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a conditional update finds the row changed
	ErrConflict = errors.New("record changed concurrently")
)

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	// Create inserts a new member
	Create(ctx context.Context, member *domain.Member) error

	// GetByID retrieves a member by id, ErrNotFound when absent
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)

	// List returns members matching filter, newest first
	List(ctx context.Context, filter domain.MemberFilter) ([]*domain.Member, error)

	// ApplyUpdate writes balance, status and next payment date of a member
	ApplyUpdate(ctx context.Context, id uuid.UUID, update domain.MemberUpdate) error

	// Delete removes a member, ErrNotFound when absent
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the interface for payment ledger operations.
// Payments are append-only: there is no update.
type PaymentRepository interface {
	// Create appends a payment row
	Create(ctx context.Context, payment *domain.Payment) error

	// ListByMember returns the member's payments, paid_date desc then created_at desc
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Payment, error)

	// List returns payments matching filter, created_at desc
	List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error)

	// DeleteByMember removes every payment of a member
	DeleteByMember(ctx context.Context, memberID uuid.UUID) error
}

// AdminRepository defines the interface for operator accounts
type AdminRepository interface {
	// Create inserts an admin, ErrDuplicate when the username or email is taken
	Create(ctx context.Context, admin *domain.Admin) error

	// GetByEmail retrieves an admin by email, ErrNotFound when absent
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

// Store groups the repositories of one backend
type Store interface {
	Members() MemberRepository
	Payments() PaymentRepository
	Admins() AdminRepository

	// WithinTx runs fn against a store bound to a single unit of work.
	// On backends where Atomic is false the writes of fn are applied one by one.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	// Atomic reports whether WithinTx rolls back on error
	Atomic() bool

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error
}
