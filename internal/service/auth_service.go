package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segyhp/lendtrack/internal/config"
	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/internal/repository"
	customError "github.com/segyhp/lendtrack/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const (
	invalidCredentials = "Invalid username or password."
	resetRequested     = "If an account exists for this username, a password reset has been requested."
)

// Claims are the claims of an operator session token
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService struct {
	admins     repository.AdminRepository
	config     config.AuthConfig
	logger     *zap.Logger
	validate   *validator.Validate
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(admins repository.AdminRepository, config config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		admins:     admins,
		config:     config,
		logger:     logger,
		validate:   newValidator(),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Email derives the login email the original dashboard keyed accounts by
func (s *AuthService) Email(username string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "@" + s.config.EmailDomain
}

// SignUp registers an operator account
func (s *AuthService) SignUp(ctx context.Context, request *domain.CredentialsRequest) (*domain.Admin, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.SignUp")
	defer span.End()

	request.Username = strings.TrimSpace(request.Username)
	if err := s.validate.Struct(request); err != nil {
		return nil, validationError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &domain.Admin{
		ID:           uuid.New(),
		Username:     strings.ToLower(request.Username),
		Email:        s.Email(request.Username),
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, customError.WrapUsernameTaken(admin.Username)
		}
		s.logger.Error("sign up failed", zap.String("username", admin.Username), zap.Error(err))
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("admin registered",
		zap.String("admin_id", admin.ID.String()),
		zap.String("username", admin.Username),
	)
	return admin, nil
}

// SignIn checks credentials and issues a session token.
// Every failure answers with the same message.
func (s *AuthService) SignIn(ctx context.Context, request *domain.CredentialsRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.SignIn")
	defer span.End()

	if strings.TrimSpace(request.Username) == "" || request.Password == "" {
		return nil, customError.WrapUnauthorized(invalidCredentials)
	}

	admin, err := s.admins.GetByEmail(ctx, s.Email(request.Username))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("sign in lookup failed", zap.Error(err))
			return nil, customError.WrapDatabaseError(err)
		}
		return nil, customError.WrapUnauthorized(invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(request.Password)); err != nil {
		s.logger.Warn("sign in: wrong password", zap.String("username", admin.Username))
		return nil, customError.WrapUnauthorized(invalidCredentials)
	}

	token, err := s.signToken(admin)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("admin signed in", zap.String("admin_id", admin.ID.String()))
	return &domain.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.config.TokenTTL.Seconds()),
		Username:    admin.Username,
	}, nil
}

// ResetRequest records a password reset request. The answer never reveals
// whether the account exists.
func (s *AuthService) ResetRequest(ctx context.Context, request *domain.ResetRequest) (*domain.MessageResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.ResetRequest")
	defer span.End()

	if err := s.validate.Struct(request); err != nil {
		return nil, validationError(err)
	}

	email := s.Email(request.Username)
	_, err := s.admins.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Info("password reset requested", zap.String("email", email))
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Info("password reset requested for unknown account", zap.String("email", email))
	default:
		s.logger.Warn("password reset lookup failed", zap.String("email", email), zap.Error(err))
	}

	return &domain.MessageResponse{Message: resetRequested}, nil
}

func (s *AuthService) signToken(admin *domain.Admin) (string, error) {
	now := s.now()
	claims := Claims{
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID.String(),
			Issuer:    "lendtrack",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
}

// ValidateToken parses a session token and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer("lendtrack"))
	if err != nil {
		return nil, customError.WrapUnauthorized("Invalid or expired session")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, customError.WrapUnauthorized("Invalid or expired session")
	}
	return claims, nil
}
