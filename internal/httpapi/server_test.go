package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/logstore"
)

type fakeExperiments struct {
	req ExperimentRequest
	err error
}

func (f *fakeExperiments) RunExperiment(ctx context.Context, req ExperimentRequest) (ExperimentResult, error) {
	f.req = req
	if f.err != nil {
		return ExperimentResult{}, f.err
	}
	return ExperimentResult{ExperimentID: "exp-1", Status: "queued"}, nil
}

type fakeFeedback struct {
	fb  Feedback
	err error
}

func (f *fakeFeedback) Submit(ctx context.Context, fb Feedback) error {
	f.fb = fb
	return f.err
}

func newTestServer(t *testing.T, deps Dependencies) *Server {
	cfg := DefaultServerConfig()
	cfg.Port = 0 // request an ephemeral port so parallel tests never collide
	s, err := NewServer(cfg, deps)
	require.NoError(t, err)
	return s
}

func TestHandleHealth_ReturnsOK(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleExperiments_PassesThroughToCollaborator(t *testing.T) {
	fake := &fakeExperiments{}
	s := newTestServer(t, Dependencies{Experiments: fake})

	payload, _ := json.Marshal(ExperimentRequest{Name: "swap-weights", Niche: "ecommerce"})
	req := httptest.NewRequest(http.MethodPost, "/experiments", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "swap-weights", fake.req.Name)
}

func TestHandleExperiments_NoCollaboratorReturns503(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	req := httptest.NewRequest(http.MethodPost, "/experiments", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleFeedback_PassesThroughToCollaborator(t *testing.T) {
	fake := &fakeFeedback{}
	s := newTestServer(t, Dependencies{Feedback: fake})

	payload, _ := json.Marshal(Feedback{Keyword: "best running shoes", Verdict: "good"})
	req := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "best running shoes", fake.fb.Keyword)
}

func TestHandleCacheStats_NilCacheReturnsZeroValue(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hits":0,"misses":0,"errors":0}`, rec.Body.String())
}

func TestHandleMonitoringDashboard_ReturnsHubSnapshot(t *testing.T) {
	hub := NewHub()
	hub.Publish(ProgressEvent{Keyword: "running shoes", Status: "approved", Completed: 1, Total: 2})
	s := newTestServer(t, Dependencies{Hub: hub})

	req := httptest.NewRequest(http.MethodGet, "/monitoring/dashboard", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	var ev ProgressEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.Equal(t, "running shoes", ev.Keyword)
	assert.Equal(t, 1, ev.Completed)
}

func TestHub_PublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	hub := NewHub()
	ch, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	for i := 0; i < 64; i++ {
		hub.Publish(ProgressEvent{Completed: i, Total: 64})
	}

	assert.LessOrEqual(t, len(ch), cap(ch))
	assert.Equal(t, cap(ch), len(ch))
}

func TestHandleAuditReport_BuildsReportFromLogger(t *testing.T) {
	l := logstore.NewLogger(logstore.Config{Dir: t.TempDir(), RetentionDays: 30})
	now := time.Now()
	require.NoError(t, l.Append(domain.LogEntry{At: now, Kind: domain.LogValidation, Level: domain.LevelInfo, Keyword: "best running shoes", Outcome: "approved", Payload: map[string]interface{}{"niche": "ecommerce"}}))
	require.NoError(t, l.Append(domain.LogEntry{At: now, Kind: domain.LogValidation, Level: domain.LevelInfo, Keyword: "xyz", Outcome: "rejected", Payload: map[string]interface{}{"niche": "generic"}}))

	s := newTestServer(t, Dependencies{Logger: l})
	req := httptest.NewRequest(http.MethodGet, "/audit/report", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report AuditReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Approved)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 0.5, report.ApprovalRate)
}

func TestNotFoundHandler_Returns404(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
