package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.TransactionPosted("SALE")
	m.TransactionPosted("SALE")
	m.TransactionPosted("PURCHASE")
	m.Rejected("INSUFFICIENT_STOCK")
	m.CreditDecision(false, "VENCIDAS")
	m.PaymentsProcessed(2, 1)
	m.ConflictRetry()
	m.ObserveHTTP("POST", "/api/checkout", "201", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactions.WithLabelValues("SALE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactions.WithLabelValues("PURCHASE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("INSUFFICIENT_STOCK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.creditDecisions.WithLabelValues("false", "VENCIDAS")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.payments.WithLabelValues("applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.payments.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflictRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/checkout", "201")))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
