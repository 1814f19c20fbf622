package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveRequest(http.MethodGet, "/api/songs", 200, 15*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/songs", 200, 5*time.Millisecond)
	m.OrderStatus("PAID")
	m.PaymentVerification(false)
	m.Upload("image", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/songs", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orders.WithLabelValues("PAID")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.payments.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("image", "error")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "riseup_http_requests_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.OrderStatus("PAID")
	m.PaymentVerification(true)
	m.Upload("audio", nil)
}
