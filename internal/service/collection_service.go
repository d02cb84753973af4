package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segyhp/lendtrack/internal/cache"
	"github.com/segyhp/lendtrack/internal/config"
	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/internal/engine"
	"github.com/segyhp/lendtrack/internal/observability"
	"github.com/segyhp/lendtrack/internal/repository"
	customError "github.com/segyhp/lendtrack/pkg/errors"
	"github.com/segyhp/lendtrack/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CollectionService struct {
	store    repository.Store
	cache    cache.Cache
	metrics  *observability.Metrics
	logger   *zap.Logger
	config   *config.Config
	validate *validator.Validate
	location *time.Location
	now      func() time.Time
}

// Option customizes a CollectionService
type Option func(*CollectionService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *CollectionService) {
		s.now = now
	}
}

func NewCollectionService(
	store repository.Store,
	cache cache.Cache,
	metrics *observability.Metrics,
	logger *zap.Logger,
	config *config.Config,
	opts ...Option,
) *CollectionService {
	s := &CollectionService{
		store:    store,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		config:   config,
		validate: newValidator(),
		location: config.Location(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current calendar date in the business timezone
func (s *CollectionService) Today() time.Time {
	return utils.Today(s.now(), s.location)
}

// CreateMember registers a member and seeds their due-date chain with the opening payment
func (s *CollectionService) CreateMember(ctx context.Context, request *domain.CreateMemberRequest) (*domain.CreateMemberResponse, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, validationError(err)
	}

	if err := checkMoneyScale(request); err != nil {
		return nil, err
	}

	collectionType, _ := domain.ParseCollectionType(request.CollectionType)
	startDate, err := utils.ParseDate(request.StartDate)
	if err != nil {
		return nil, customError.WrapValidation("start_date must be a date in YYYY-MM-DD format")
	}

	interest, minPayment, err := s.loanTerms(collectionType, request)
	if err != nil {
		return nil, err
	}

	now := s.now()
	member := &domain.Member{
		ID:                 uuid.New(),
		Name:               strings.TrimSpace(request.Name),
		Phone:              request.Phone,
		Address:            strings.TrimSpace(request.Address),
		AadhaarNumber:      request.AadhaarNumber,
		LoanAmount:         request.LoanAmount,
		AmountGiven:        request.AmountGiven,
		InterestPercentage: interest,
		CollectionType:     collectionType,
		TotalPayable:       request.LoanAmount,
		BalanceRemaining:   request.LoanAmount,
		MinPaymentAmount:   minPayment,
		StartDate:          startDate,
		Status:             domain.MemberStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	opening := engine.OpeningPayment(member, now)
	next := opening.NextPaymentDate
	member.NextPaymentDate = &next

	var applied string
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Members().Create(ctx, member); err != nil {
			return err
		}
		applied = "member"
		return tx.Payments().Create(ctx, opening)
	})
	if err != nil {
		return nil, s.writeError("create member", member.ID, applied, err)
	}

	s.metrics.IncrMemberCreated(string(collectionType))
	s.invalidate(ctx)

	s.logger.Info("member created",
		zap.String("member_id", member.ID.String()),
		zap.String("collection_type", string(collectionType)),
		zap.String("loan_amount", member.LoanAmount.String()),
		zap.String("min_payment_amount", member.MinPaymentAmount.String()),
	)

	return &domain.CreateMemberResponse{Member: member, OpeningPayment: opening}, nil
}

// loanTerms returns interest percentage and minimum payment for a new loan.
// Daily and weekly loans derive both from configuration.
func (s *CollectionService) loanTerms(collectionType domain.CollectionType, request *domain.CreateMemberRequest) (decimal.Decimal, decimal.Decimal, error) {
	switch collectionType {
	case domain.CollectionDaily:
		pct := s.config.GetDailyInterestPercent()
		return pct, utils.CalculateMinPayment(request.LoanAmount, pct), nil
	case domain.CollectionWeekly:
		pct := s.config.GetWeeklyInterestPercent()
		return pct, utils.CalculateMinPayment(request.LoanAmount, pct), nil
	}

	if request.MinPaymentAmount == nil || !request.MinPaymentAmount.IsPositive() {
		return decimal.Zero, decimal.Zero, customError.WrapValidation(
			"min_payment_amount must be greater than 0 for " + string(collectionType) + " collection")
	}
	interest := decimal.Zero
	if request.InterestPercentage != nil {
		interest = *request.InterestPercentage
	}
	return interest, *request.MinPaymentAmount, nil
}

// checkMoneyScale rejects amounts the money columns would round away
func checkMoneyScale(request *domain.CreateMemberRequest) error {
	amounts := []struct {
		field string
		value *decimal.Decimal
	}{
		{"loan_amount", &request.LoanAmount},
		{"amount_given", &request.AmountGiven},
		{"min_payment_amount", request.MinPaymentAmount},
	}
	for _, a := range amounts {
		if a.value != nil && !utils.IsMoneyScale(*a.value) {
			return customError.WrapValidation(fmt.Sprintf("%s must have at most %d decimal places", a.field, utils.MoneyScale))
		}
	}
	return nil
}

// ListMembers returns members with the given status, newest first.
// Balances and statuses are taken from the ledger.
func (s *CollectionService) ListMembers(ctx context.Context, status string) ([]*domain.Member, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "", domain.MemberStatusAll:
		status = domain.MemberStatusAll
	case domain.MemberStatusActive, domain.MemberStatusCompleted, domain.MemberStatusClosed:
	default:
		return nil, customError.WrapValidation("status must be one of all, active, completed, closed")
	}

	// the stored status may lag the ledger, so filter after refreshing
	members, payments, err := s.loadBook(ctx, domain.MemberFilter{})
	if err != nil {
		return nil, err
	}
	refreshed := refreshAll(members, payments)
	if status == domain.MemberStatusAll {
		return refreshed, nil
	}

	matched := make([]*domain.Member, 0, len(refreshed))
	for _, m := range refreshed {
		if m.Status == status {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

// GetMember returns the member, today's assessment and their ledger
func (s *CollectionService) GetMember(ctx context.Context, id uuid.UUID) (*domain.MemberDetail, error) {
	member, payments, err := s.loadMember(ctx, id)
	if err != nil {
		return nil, err
	}

	refreshed := engine.Refreshed(member, payments)
	return &domain.MemberDetail{
		Member:        refreshed,
		Assessment:    engine.Assess(refreshed, payments, s.Today()),
		Transactions:  payments,
		TotalPaid:     engine.TotalPaid(member.ID, payments),
		LedgerBalance: engine.LedgerBalance(member, payments),
	}, nil
}

// ListPayments returns the member's ledger, paid date descending
func (s *CollectionService) ListPayments(ctx context.Context, id uuid.UUID) ([]*domain.Payment, error) {
	_, payments, err := s.loadMember(ctx, id)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// DeleteMember removes the member's payments, then the member
func (s *CollectionService) DeleteMember(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Members().GetByID(ctx, id); err != nil {
		return s.lookupError(id, err)
	}

	var applied string
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Payments().DeleteByMember(ctx, id); err != nil {
			return err
		}
		applied = "payment history removal"
		return tx.Members().Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return customError.WrapMemberNotFound(id.String())
		}
		return s.writeError("delete member", id, applied, err)
	}

	s.invalidate(ctx)
	s.logger.Info("member deleted", zap.String("member_id", id.String()))
	return nil
}

// RecordPayment appends a repayment to the member's ledger and updates the member row
func (s *CollectionService) RecordPayment(ctx context.Context, id uuid.UUID, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error) {
	member, payments, err := s.loadMember(ctx, id)
	if err != nil {
		return nil, err
	}

	// the stored balance may lag the ledger after a partial write
	stored := member.BalanceRemaining
	member = engine.Refreshed(member, payments)

	payment, update, err := engine.RecordPayment(member, payments, request.Amount, s.Today(), s.now())
	if err != nil {
		return nil, err
	}
	// a concurrent payment moves the stored balance and fails this write
	update.IfBalance = &stored

	var applied string
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}
		applied = "payment"
		return tx.Members().ApplyUpdate(ctx, id, update)
	})
	if errors.Is(err, repository.ErrConflict) && s.store.Atomic() {
		s.logger.Warn("payment lost a concurrent update", zap.String("member_id", id.String()))
		return nil, customError.WrapConcurrentUpdate(id.String())
	}
	if err != nil {
		return nil, s.writeError("record payment", id, applied, err)
	}

	update.Apply(member)
	member.UpdatedAt = payment.CreatedAt

	s.metrics.RecordPayment(string(member.CollectionType), payment.PaidAmount)
	s.invalidate(ctx)

	s.logger.Info("payment recorded",
		zap.String("member_id", id.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.PaidAmount.String()),
		zap.String("balance", payment.UpdatedBalance.String()),
		zap.String("next_payment_date", utils.FormatDate(payment.NextPaymentDate)),
		zap.String("status", member.Status),
	)

	return &domain.RecordPaymentResponse{Payment: payment, Member: member}, nil
}

// TodayCollection builds the collection sheet for one tab
func (s *CollectionService) TodayCollection(ctx context.Context, tab string) (*domain.CollectionSheet, error) {
	tab = strings.ToLower(strings.TrimSpace(tab))
	if tab == "" {
		tab = domain.TabAll
	}
	if !engine.ValidTab(tab) {
		return nil, customError.WrapValidation("tab must be one of all, daily, weekly, 10 days, monthly, overdue")
	}

	members, payments, err := s.loadBook(ctx, domain.MemberFilter{})
	if err != nil {
		return nil, err
	}

	sheet := engine.TodayCollection(refreshAll(members, payments), payments, s.Today(), tab)
	return &sheet, nil
}

// OverdueMembers lists active members past their due date, most overdue first
func (s *CollectionService) OverdueMembers(ctx context.Context) ([]*domain.OverdueItem, error) {
	members, payments, err := s.loadBook(ctx, domain.MemberFilter{Status: domain.MemberStatusActive})
	if err != nil {
		return nil, err
	}
	return engine.OverdueMembers(refreshAll(members, payments), payments, s.Today()), nil
}

// Dashboard returns today's rollups, served from cache when present
func (s *CollectionService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	today := s.Today()
	key := cache.DashboardKey(today)

	var cached domain.DashboardStats
	found, err := s.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		s.metrics.IncrCacheError()
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
	case found:
		s.metrics.IncrCacheHit()
		return &cached, nil
	default:
		s.metrics.IncrCacheMiss()
	}

	members, payments, err := s.loadBook(ctx, domain.MemberFilter{})
	if err != nil {
		return nil, err
	}

	stats := engine.Summarize(refreshAll(members, payments), payments, today)
	if err := s.cache.Set(ctx, key, stats); err != nil {
		s.metrics.IncrCacheError()
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
	return &stats, nil
}

// Reconcile rewrites every member row whose balance, status or next payment
// date has drifted from its ledger
func (s *CollectionService) Reconcile(ctx context.Context) (*domain.ReconcileReport, error) {
	members, payments, err := s.loadBook(ctx, domain.MemberFilter{})
	if err != nil {
		return nil, err
	}
	byMember := engine.GroupByMember(payments)

	report := &domain.ReconcileReport{Checked: len(members), MemberIDs: []uuid.UUID{}}
	for _, m := range members {
		update, drifted := engine.Reconcile(m, byMember[m.ID])
		if !drifted {
			continue
		}
		if err := s.store.Members().ApplyUpdate(ctx, m.ID, update); err != nil {
			s.logger.Error("reconcile member failed", zap.String("member_id", m.ID.String()), zap.Error(err))
			return report, customError.WrapDatabaseError(err)
		}
		report.Corrected++
		report.MemberIDs = append(report.MemberIDs, m.ID)

		s.logger.Info("member reconciled",
			zap.String("member_id", m.ID.String()),
			zap.String("stored_balance", m.BalanceRemaining.String()),
			zap.String("ledger_balance", update.BalanceRemaining.String()),
			zap.String("status", update.Status),
		)
	}

	s.metrics.AddReconciled(report.Corrected)
	if report.Corrected > 0 {
		s.invalidate(ctx)
	}
	return report, nil
}

// loadBook fetches members matching filter and the whole payment ledger concurrently
func (s *CollectionService) loadBook(ctx context.Context, filter domain.MemberFilter) ([]*domain.Member, []*domain.Payment, error) {
	var (
		members  []*domain.Member
		payments []*domain.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.store.Members().List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.store.Payments().List(gctx, domain.PaymentFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("load members and payments", zap.Error(err))
		return nil, nil, customError.WrapDatabaseError(err)
	}
	return members, payments, nil
}

// loadMember fetches one member and their ledger concurrently
func (s *CollectionService) loadMember(ctx context.Context, id uuid.UUID) (*domain.Member, []*domain.Payment, error) {
	var (
		member   *domain.Member
		payments []*domain.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		member, err = s.store.Members().GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.store.Payments().ListByMember(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, s.lookupError(id, err)
	}
	if payments == nil {
		payments = []*domain.Payment{}
	}
	return member, payments, nil
}

func (s *CollectionService) lookupError(id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return customError.WrapMemberNotFound(id.String())
	}
	s.logger.Error("load member", zap.String("member_id", id.String()), zap.Error(err))
	return customError.WrapDatabaseError(err)
}

// writeError classifies a failed unit of work. On a store without
// transactions a failure after the first step leaves that step applied.
func (s *CollectionService) writeError(op string, memberID uuid.UUID, applied string, err error) error {
	if applied != "" && !s.store.Atomic() {
		s.metrics.IncrPartialWrite()
		s.logger.Error("partial write",
			zap.String("op", op),
			zap.String("member_id", memberID.String()),
			zap.String("applied", applied),
			zap.Error(err),
		)
		return customError.WrapPartialWrite(applied, err)
	}

	s.logger.Error("write failed",
		zap.String("op", op),
		zap.String("member_id", memberID.String()),
		zap.Error(err),
	)
	return customError.WrapDatabaseError(err)
}

// invalidate drops today's dashboard snapshot; failures are logged only
func (s *CollectionService) invalidate(ctx context.Context) {
	key := cache.DashboardKey(s.Today())
	if err := s.cache.Delete(ctx, key); err != nil {
		s.metrics.IncrCacheError()
		s.logger.Warn("dashboard cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

func refreshAll(members []*domain.Member, payments []*domain.Payment) []*domain.Member {
	byMember := engine.GroupByMember(payments)
	refreshed := make([]*domain.Member, 0, len(members))
	for _, m := range members {
		refreshed = append(refreshed, engine.Refreshed(m, byMember[m.ID]))
	}
	return refreshed
}
