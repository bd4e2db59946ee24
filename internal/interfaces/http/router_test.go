package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/appealgen/internal/application/appeal"
	"github.com/careloop/appealgen/internal/domain/payer"
	"github.com/careloop/appealgen/internal/intelligence/denial_extractor"
	"github.com/careloop/appealgen/internal/interfaces/http/handlers"
	"github.com/careloop/appealgen/internal/interfaces/http/middleware"
)

type fakeMetrics struct {
	mu       sync.Mutex
	observed []string
}

func (f *fakeMetrics) ObserveHTTPRequest(method, path string, status int, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observed = append(f.observed, method+" "+path)
}

func (f *fakeMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
}

func newTestRouter(t *testing.T, metrics *fakeMetrics) http.Handler {
	t.Helper()
	payers := payer.SeedPayers()
	svc := appeal.NewService(appeal.Config{}, appeal.Dependencies{
		Extractor: denial_extractor.NewExtractor(denial_extractor.NewClassifier(nil), payers),
		Scorer:    denial_extractor.NewScorer(denial_extractor.ScoreWeights{}),
		Resolver:  appeal.NewRequirementsResolver(payers),
		Composer:  appeal.NewComposer(nil, nil),
	})

	return NewRouter(RouterConfig{
		AppealHandler: handlers.NewAppealHandler(svc, nil, 1<<20),
		HealthHandler: handlers.NewHealthHandler(nil),
		Metrics:       metrics,
	})
}

func TestRouterServesProbesAndMetrics(t *testing.T) {
	r := newTestRouter(t, &fakeMetrics{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}

func TestRouterObservesRoutePattern(t *testing.T) {
	metrics := &fakeMetrics{}
	r := newTestRouter(t, metrics)

	body := strings.NewReader(`{"denial_text":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appeals/text", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Len(t, metrics.observed, 1)
	assert.Equal(t, "POST /api/v1/appeals/text", metrics.observed[0])
}

func TestRouterSetsRequestID(t *testing.T) {
	r := newTestRouter(t, &fakeMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appeals/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code, "no repository configured")
	assert.Contains(t, rec.Body.String(), "request_id")
}

func TestRouterRateLimits(t *testing.T) {
	payers := payer.SeedPayers()
	svc := appeal.NewService(appeal.Config{}, appeal.Dependencies{
		Extractor: denial_extractor.NewExtractor(denial_extractor.NewClassifier(nil), payers),
		Scorer:    denial_extractor.NewScorer(denial_extractor.ScoreWeights{}),
		Resolver:  appeal.NewRequirementsResolver(payers),
		Composer:  appeal.NewComposer(nil, nil),
	})
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
	})
	defer limiter.Stop()

	r := NewRouter(RouterConfig{
		AppealHandler: handlers.NewAppealHandler(svc, nil, 1<<20),
		RateLimiter:   limiter,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appeals/", nil)
	req.RemoteAddr = "10.0.0.9:1234"

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	first := rec.Code

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEqual(t, first, rec.Code)
}
