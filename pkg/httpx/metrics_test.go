package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/deskauth/pkg/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := httpx.NewMetrics("deskauth", reg)

	const route = "DELETE /api/users/{username}"
	h := m.Instrument(route, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for range 3 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/users/ghost", nil))
	}

	require.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(route, "delete", "404")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))

	rec := httptest.NewRecorder()
	httpx.MetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `deskauth_http_requests_total{code="404",method="delete",route="DELETE /api/users/{username}"} 3`)
	require.NotContains(t, string(body), "ghost")
}
