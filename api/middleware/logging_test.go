package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/angelmondragon/gearshare-backend/pkg/auth"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
	"github.com/angelmondragon/gearshare-backend/pkg/metrics"
)

func TestLoggingRecordsRoutePatternAndUser(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	reg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)
	userID := uuid.New()

	r := chi.NewRouter()
	r.Use(RequestID(logg), Logging(logg, httpMetrics))
	r.Get("/services/{id}", func(w http.ResponseWriter, req *http.Request) {
		WithIdentity(req.Context(), pkgAuth.Identity{UserID: userID, Username: "owner"})
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/services/abc", nil)
	req.Header.Set(requestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(requestIDHeader))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "request.complete", line["message"])
	assert.Equal(t, "/services/{id}", line["route"])
	assert.Equal(t, float64(http.StatusNoContent), line["status"])
	assert.Equal(t, userID.String(), line["user_id"])

	expected := `
# HELP gearshare_http_requests_total HTTP requests by method, route and status code.
# TYPE gearshare_http_requests_total counter
gearshare_http_requests_total{method="GET",route="/services/{id}",status="204"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "gearshare_http_requests_total"))
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	h := RequestID(nil)(okHandler(nil, nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
	assert.NoError(t, err)
}

func TestRecovererWritesInternalError(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"INTERNAL_ERROR"`)
	assert.NotContains(t, rec.Body.String(), "kaboom")
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(okHandler(nil, nil))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/services", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-access-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
