package mocks

import (
	"context"

	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context, filter domain.MemberFilter) ([]*domain.Member, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) ApplyUpdate(ctx context.Context, id uuid.UUID, update domain.MemberUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) DeleteByMember(ctx context.Context, memberID uuid.UUID) error {
	args := m.Called(ctx, memberID)
	return args.Error(0)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

// MockStore hands out its repository mocks. WithinTx runs fn against the
// same store and Atomic returns IsAtomic; neither is recorded.
type MockStore struct {
	mock.Mock

	MemberRepo  *MockMemberRepository
	PaymentRepo *MockPaymentRepository
	AdminRepo   *MockAdminRepository
	IsAtomic    bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		MemberRepo:  &MockMemberRepository{},
		PaymentRepo: &MockPaymentRepository{},
		AdminRepo:   &MockAdminRepository{},
		IsAtomic:    true,
	}
}

func (m *MockStore) Members() repository.MemberRepository   { return m.MemberRepo }
func (m *MockStore) Payments() repository.PaymentRepository { return m.PaymentRepo }
func (m *MockStore) Admins() repository.AdminRepository     { return m.AdminRepo }
func (m *MockStore) Atomic() bool                           { return m.IsAtomic }

func (m *MockStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(m)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// AssertRepositories checks the expectations of every repository mock
func (m *MockStore) AssertRepositories(t mock.TestingT) {
	m.MemberRepo.AssertExpectations(t)
	m.PaymentRepo.AssertExpectations(t)
	m.AdminRepo.AssertExpectations(t)
}
