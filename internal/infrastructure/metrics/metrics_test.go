package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.StatementServed("ok")
	m.StatementServed("ok")
	m.StatementServed("LEDGER_INCONSISTENT")
	m.LedgerEntriesRecorded("CHARGE", 12)
	m.LedgerEntriesRecorded("PAYMENT", 0)
	m.DuesCharged(12)
	m.ImportRows("TESORERIA", 40, 2)
	m.LedgerInconsistent()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.statements.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statements.WithLabelValues("LEDGER_INCONSISTENT")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.ledgerEntries.WithLabelValues("CHARGE")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.duesCharges))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.importRows.WithLabelValues("TESORERIA", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerInconsistent))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.StatementServed("ok")
		m.LedgerEntriesRecorded("CHARGE", 1)
		m.DuesCharged(1)
		m.ImportRows("TESORERIA", 1, 1)
		m.LedgerInconsistent()
	})
}

func TestMetrics_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.GinMiddleware())
	router.GET("/api/v1/treasury/members/:id/statement", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/treasury/members/abc/statement", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.httpRequests.WithLabelValues(http.MethodGet, "/api/v1/treasury/members/:id/statement", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), MetricHTTPRequestsTotal))
}
