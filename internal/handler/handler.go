package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/internal/service"
	customError "github.com/segyhp/lendtrack/pkg/errors"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// CollectionService is the use-case surface the member, payment and
// collection endpoints need
type CollectionService interface {
	CreateMember(ctx context.Context, request *domain.CreateMemberRequest) (*domain.CreateMemberResponse, error)
	ListMembers(ctx context.Context, status string) ([]*domain.Member, error)
	GetMember(ctx context.Context, id uuid.UUID) (*domain.MemberDetail, error)
	DeleteMember(ctx context.Context, id uuid.UUID) error
	RecordPayment(ctx context.Context, id uuid.UUID, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error)
	ListPayments(ctx context.Context, id uuid.UUID) ([]*domain.Payment, error)
	TodayCollection(ctx context.Context, tab string) (*domain.CollectionSheet, error)
	OverdueMembers(ctx context.Context) ([]*domain.OverdueItem, error)
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
	Reconcile(ctx context.Context) (*domain.ReconcileReport, error)
}

// AuthService issues and checks operator sessions
type AuthService interface {
	SignUp(ctx context.Context, request *domain.CredentialsRequest) (*domain.Admin, error)
	SignIn(ctx context.Context, request *domain.CredentialsRequest) (*domain.LoginResponse, error)
	ResetRequest(ctx context.Context, request *domain.ResetRequest) (*domain.MessageResponse, error)
	ValidateToken(token string) (*service.Claims, error)
}

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return customError.WrapValidation("request body is required")
		}
		return customError.WrapValidation("invalid request body: " + err.Error())
	}
	return nil
}

func memberIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["memberId"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, customError.WrapValidation("invalid member id: " + raw)
	}
	return id, nil
}
