package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cardledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"validation", shared.ValidationError{Field: "amount", Reason: "must be positive"}, "validation_error"},
		{"funds", shared.InsufficientFundsError{CardID: uuid.New(), Balance: decimal.Zero, Required: decimal.NewFromInt(1)}, "insufficient_funds"},
		{"invalid state", shared.InvalidStateError{Resource: "card", ID: "1", State: "inactive"}, "invalid_state"},
		{"not found", shared.NotFoundError{Resource: "card", ID: "1"}, "not_found"},
		{"conflict", shared.ConflictError{Resource: "transaction", ID: "1"}, "conflict"},
		{"storage", shared.StorageError{Op: "commit", Err: errors.New("reset")}, "storage_error"},
		{"wrapped storage", shared.WrapStorage("execute_tx", errors.New("reset")), "storage_error"},
		{"unknown", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveOperation("withdrawal", nil)
	m.ObserveOperation("withdrawal", nil)
	m.ObserveOperation("withdrawal", shared.NotFoundError{Resource: "card", ID: "x"})
	m.ObserveSettlement(shared.SettlementOutcomeSettled, "applied")
	m.ObserveOutboxMessage("transaction.recorded", errors.New("broker down"))
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/withdrawals", http.StatusCreated, 20*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.operationsTotal.WithLabelValues("withdrawal", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operationsTotal.WithLabelValues("withdrawal", "not_found")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.settlementsTotal.WithLabelValues("settled", "applied")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.outboxPublished.WithLabelValues("transaction.recorded", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/api/v1/withdrawals", "201")))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("transfer", nil)
		m.ObserveHTTPRequest(http.MethodGet, "", http.StatusOK, time.Millisecond)
		m.ObserveSettlement(shared.SettlementOutcomeRejected, "applied")
		m.ObserveOutboxMessage("transaction.settled", nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveOperation("transfer", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `card_ledger_ledger_operations_total{operation="transfer",outcome="ok"} 1`)
}
