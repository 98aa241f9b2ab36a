package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()
	m.LeadCreated("api")
	m.LeadCreated("import")
	m.LeadCreated("import")
	m.ImportFinished(3, 1)
	m.CallLogged("busy")
	m.ScoresUpdated(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.leadsCreated.WithLabelValues("import")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.importRows.WithLabelValues("imported")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.importRows.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsLogged.WithLabelValues("busy")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.scoreAccounts))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.LeadCreated("api")
		m.ImportFinished(1, 1)
		m.CallLogged("busy")
		m.ScoresUpdated(1)
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/leads/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/leads/7", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/leads/:id", "204")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "workbooster_http_requests_total")
}
