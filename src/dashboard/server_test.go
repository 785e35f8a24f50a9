package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WastePrediction/src/processor"
	"WastePrediction/src/storage"
)

// stubRunner 固定返回预设结果的流水线替身
type stubRunner struct {
	result *processor.Result
	err    error
	calls  int
}

func (s *stubRunner) Run(withEnsembles bool) (*processor.Result, error) {
	s.calls++
	return s.result, s.err
}

func sampleResult() *processor.Result {
	return &processor.Result{
		RunID:      "test-run",
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		MergedRows: 15,
		TrainRows:  12,
		TestRows:   3,
		Models: []processor.ModelResult{
			{
				Name:      processor.ModelLinear,
				Actual:    []float64{10, 12, 14},
				Predicted: []float64{10.5, 11.5, 14.2},
				MSE:       0.18,
			},
		},
	}
}

func newTestServer(t *testing.T, runner Runner) *Server {
	t.Helper()
	logger, err := storage.NewLogger(filepath.Join(t.TempDir(), "app.log"), "1024")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { logger.Close() })
	return NewServer(runner, logger)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestResultsEndpointWithoutRun(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResultsEndpointReturnsLatest(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})
	srv.SetResult(sampleResult())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got processor.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "test-run", got.RunID)
	require.Len(t, got.Models, 1)
	assert.Equal(t, 0.18, got.Models[0].MSE)
}

func TestRefreshEndpointRerunsPipeline(t *testing.T) {
	runner := &stubRunner{result: sampleResult()}
	srv := newTestServer(t, runner)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "test-run", srv.Result().RunID)
}

func TestRefreshEndpointPipelineFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("数据文件缺失")}
	srv := newTestServer(t, runner)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, srv.Result())
}

func TestIndexPageRendersModels(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})
	srv.SetResult(sampleResult())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Waste Management Prediction Dashboard")
	assert.Contains(t, body, "Linear Regression Model: Mean Squared Error = 0.18")
	assert.Contains(t, body, "<svg")
}

func TestIndexPageWithoutResult(t *testing.T) {
	srv := newTestServer(t, &stubRunner{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestScatterSVG(t *testing.T) {
	svg := scatterSVG([]float64{1, 2, 3}, []float64{1.1, 2.2, 2.9})
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Equal(t, 3, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, "stroke-dasharray") // y=x 参考线

	// 空输入与零方差输入不应崩溃
	assert.Contains(t, scatterSVG(nil, nil), "<svg")
	assert.Contains(t, scatterSVG([]float64{2, 2}, []float64{2, 2}), "<svg")
}
