package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/internal/service"
	"github.com/segyhp/lendtrack/pkg/response"

	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "claims"

type AuthHandler struct {
	service AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var request domain.CredentialsRequest
	if err := decodeJSON(w, r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	admin, err := h.service.SignUp(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, admin)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request domain.CredentialsRequest
	if err := decodeJSON(w, r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	session, err := h.service.SignIn(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, session)
}

// ResetRequest handles POST /api/v1/auth/reset-request
func (h *AuthHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	var request domain.ResetRequest
	if err := decodeJSON(w, r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	message, err := h.service.ResetRequest(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, message)
}

// RequireAuth rejects requests without a valid "Bearer <token>" header
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Unauthorized(w, "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := h.service.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			h.logger.Debug("rejected session token", zap.String("path", r.URL.Path), zap.Error(err))
			response.Unauthorized(w, "Invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the session claims RequireAuth stored on ctx
func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)
	return claims, ok
}
