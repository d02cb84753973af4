package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.True(t, NewLogger("debug").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, NewLogger("info").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, NewLogger("warn").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, NewLogger("bogus").Core().Enabled(zapcore.InfoLevel))
}

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordPayment("daily", decimal.RequireFromString("150.50"))
	a.RecordPayment("daily", decimal.NewFromInt(100))
	a.IncrCacheHit()
	a.AddReconciled(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(a.paymentsRecorded.WithLabelValues("daily")))
	assert.Equal(t, 250.5, testutil.ToFloat64(a.paymentAmount.WithLabelValues("daily")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 3.0, testutil.ToFloat64(a.reconciledMembers))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.paymentsRecorded.WithLabelValues("daily")))
}

func TestZapLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := NewMetrics()

	router := mux.NewRouter()
	router.Use(ZapLoggerMiddleware(zap.New(core), metrics))
	router.HandleFunc("/members/{memberId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	router.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/members/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusNotFound), entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusOK), entries[1].ContextMap()["status"])

	assert.Equal(t, 2, testutil.CollectAndCount(metrics.requestDuration))
}
