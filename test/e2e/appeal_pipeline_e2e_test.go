// End-to-end exercise of the HTTP surface over the full pipeline with
// in-memory persistence.  No external services are required.
package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/appealgen/internal/application/appeal"
	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/domain/payer"
	"github.com/careloop/appealgen/internal/intelligence/denial_extractor"
	httpserver "github.com/careloop/appealgen/internal/interfaces/http"
	"github.com/careloop/appealgen/internal/interfaces/http/handlers"
	apperrors "github.com/careloop/appealgen/pkg/errors"
)

const denialText = `Blue Cross Blue Shield has completed its review of your claim.
Member ID: XQJ882134455. Claim Number: CLM-2024-0042.
The service billed under CPT code 97110 was denied because prior authorization
was not obtained before the service was rendered.
Denial date: 2024-05-02. An appeal must be filed by 2024-10-29.`

type memoryRepo struct {
	mu      sync.Mutex
	appeals map[string]*denial.Appeal
}

func (m *memoryRepo) Save(_ context.Context, a *denial.Appeal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appeals[a.ID] = a
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*denial.Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.appeals[id]; ok {
		return a, nil
	}
	return nil, apperrors.New(apperrors.ErrCodeAppealNotFound, "appeal not found")
}

func (m *memoryRepo) ListRecent(_ context.Context, limit int) ([]*denial.Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*denial.Appeal, 0, len(m.appeals))
	for _, a := range m.appeals {
		if len(out) == limit {
			break
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id string, status denial.AppealStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appeals[id]
	if !ok {
		return apperrors.New(apperrors.ErrCodeAppealNotFound, "appeal not found")
	}
	a.Status = status
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	payers := payer.SeedPayers()
	svc := appeal.NewService(appeal.Config{}, appeal.Dependencies{
		Extractor:  denial_extractor.NewExtractor(denial_extractor.NewClassifier(nil), payers),
		Scorer:     denial_extractor.NewScorer(denial_extractor.ScoreWeights{}),
		Resolver:   appeal.NewRequirementsResolver(payers),
		Composer:   appeal.NewComposer(nil, nil),
		Repository: &memoryRepo{appeals: make(map[string]*denial.Appeal)},
	})

	router := httpserver.NewRouter(httpserver.RouterConfig{
		AppealHandler: handlers.NewAppealHandler(svc, nil, 1<<20),
		HealthHandler: handlers.NewHealthHandler(nil),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestAppealLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// Generate from text.
	resp := postJSON(t, srv.URL+"/api/v1/appeals/text", map[string]interface{}{
		"denial_text": denialText,
		"patient_context": map[string]string{
			"patient_name": "Alex Rivera",
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result denial.AppealResult
	decode(t, resp, &result)
	assert.Equal(t, "Blue Cross Blue Shield", result.DenialInfo.PayerName)
	assert.Equal(t, denial.ReasonPriorAuthRequired, result.DenialInfo.Reason)
	assert.Contains(t, result.AppealLetter, "Alex Rivera")
	assert.NotEmpty(t, result.RequiredDocuments)

	// Retrieve the persisted record.
	getResp, err := http.Get(srv.URL + "/api/v1/appeals/" + result.AppealID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var saved denial.Appeal
	decode(t, getResp, &saved)
	assert.Equal(t, denial.StatusGenerated, saved.Status)
	assert.Equal(t, "Alex Rivera", saved.PatientName)

	// Move it through the lifecycle.
	req, err := http.NewRequest(http.MethodPatch,
		srv.URL+"/api/v1/appeals/"+result.AppealID+"/status",
		bytes.NewReader([]byte(`{"status":"submitted"}`)))
	require.NoError(t, err)
	patchResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	patchResp.Body.Close()
	require.Equal(t, http.StatusOK, patchResp.StatusCode)

	getResp, err = http.Get(srv.URL + "/api/v1/appeals/" + result.AppealID)
	require.NoError(t, err)
	decode(t, getResp, &saved)
	assert.Equal(t, denial.StatusSubmitted, saved.Status)
}

func TestRejectionAndExtraction(t *testing.T) {
	srv := newTestServer(t)

	// Short input is rejected before any pipeline stage.
	resp := postJSON(t, srv.URL+"/api/v1/appeals/text", map[string]string{
		"denial_text": "denied",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody struct {
		Code string `json:"code"`
	}
	decode(t, resp, &errBody)
	assert.Equal(t, "APL_002", errBody.Code)

	// Extraction without composition.
	resp = postJSON(t, srv.URL+"/api/v1/appeals/extract", map[string]string{
		"denial_text": denialText,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var extract struct {
		DenialInfo      *denial.Extraction `json:"denial_info"`
		ConfidenceScore float64            `json:"confidence_score"`
	}
	decode(t, resp, &extract)
	assert.Contains(t, extract.DenialInfo.ProcedureCodes, "97110")
	assert.Greater(t, extract.ConfidenceScore, 0.0)
}
