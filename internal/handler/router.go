package handler

import (
	"net/http"

	"github.com/segyhp/lendtrack/internal/observability"
	"github.com/segyhp/lendtrack/pkg/response"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups everything NewRouter mounts
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	Members    *MemberHandler
	Collection *CollectionHandler
}

// NewRouter wires the public and session-protected routes
func NewRouter(h Handlers, metrics *observability.Metrics, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		middleware.RequestID,
		observability.TracingMiddleware,
		observability.ZapLoggerMiddleware(logger, metrics),
		response.CORSMiddleware,
	)

	// Preflight requests match here so CORSMiddleware can answer them
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	auth := router.PathPrefix("/api/v1/auth").Subrouter()
	auth.HandleFunc("/signup", h.Auth.SignUp).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/reset-request", h.Auth.ResetRequest).Methods(http.MethodPost)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(h.Auth.RequireAuth)

	api.HandleFunc("/members", h.Members.CreateMember).Methods(http.MethodPost)
	api.HandleFunc("/members", h.Members.ListMembers).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberId}", h.Members.GetMember).Methods(http.MethodGet)
	api.HandleFunc("/members/{memberId}", h.Members.DeleteMember).Methods(http.MethodDelete)
	api.HandleFunc("/members/{memberId}/payments", h.Members.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/members/{memberId}/payments", h.Members.ListPayments).Methods(http.MethodGet)

	api.HandleFunc("/collections/today", h.Collection.TodayCollection).Methods(http.MethodGet)
	api.HandleFunc("/collections/today/export", h.Collection.ExportTodayCollection).Methods(http.MethodGet)
	api.HandleFunc("/collections/overdue", h.Collection.OverdueMembers).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", h.Collection.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/reconcile", h.Collection.Reconcile).Methods(http.MethodPost)

	return router
}
