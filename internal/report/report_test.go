package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/survey-scoring-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func sampleResults() []*domain.ScoreResult {
	score := 12
	return []*domain.ScoreResult{
		{
			ToolName:       "BDI",
			TotalScore:     &score,
			Interpretation: "가벼운 우울 - 가벼운 우울 상태입니다.",
			Category:       "가벼운 우울",
		},
		{
			ToolName:       "AUDIT",
			Interpretation: "Gender is required for this assessment.",
			Error:          "Gender is required for this assessment.",
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	messages := BuildPrompt("patient-1", sampleResults())

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "임상심리")

	assert.Equal(t, "user", messages[1].Role)
	assert.Contains(t, messages[1].Content, "patient-1")
	assert.Contains(t, messages[1].Content, "BDI")
	assert.Contains(t, messages[1].Content, "총점: 12")
	assert.Contains(t, messages[1].Content, "채점 불가")
}

func TestFallbackReport(t *testing.T) {
	text := FallbackReport("patient-1", sampleResults())

	assert.Contains(t, text, "patient-1")
	assert.Contains(t, text, "주의")
	assert.Contains(t, text, "## BDI")
	assert.Contains(t, text, "총점: 12")
	assert.Contains(t, text, "채점 불가")
	assert.Contains(t, text, "확정 진단이 아닙니다")
}

func TestClient_GenerateReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "소견서 본문"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(domain.ReportConfig{
		Enabled:   true,
		BaseURL:   server.URL,
		APIKey:    "test-key",
		Model:     "test-model",
		Timeout:   5 * time.Second,
		RateLimit: 10,
	}, testLogger())

	report, err := client.GenerateReport(context.Background(), "patient-1", sampleResults())
	require.NoError(t, err)
	assert.Equal(t, "소견서 본문", report)
}

func TestClient_GenerateReportUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(domain.ReportConfig{
		Enabled:   true,
		BaseURL:   server.URL,
		Model:     "test-model",
		Timeout:   5 * time.Second,
		RateLimit: 10,
	}, testLogger())

	_, err := client.GenerateReport(context.Background(), "patient-1", sampleResults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

type stubGenerator struct {
	report string
	err    error
}

func (s *stubGenerator) GenerateReport(context.Context, string, []*domain.ScoreResult) (string, error) {
	return s.report, s.err
}

func TestService_GenerateReport(t *testing.T) {
	svc := NewServiceWithGenerator(&stubGenerator{report: "생성된 소견서"}, testLogger())

	report := svc.GenerateReport(context.Background(), "patient-1", sampleResults())
	assert.Equal(t, "생성된 소견서", report)
}

func TestService_FallbackOnError(t *testing.T) {
	svc := NewServiceWithGenerator(&stubGenerator{err: errors.New("boom")}, testLogger())

	report := svc.GenerateReport(context.Background(), "patient-1", sampleResults())
	assert.Contains(t, report, "주의")
}

func TestService_DisabledUsesFallback(t *testing.T) {
	svc := NewService(domain.ReportConfig{Enabled: false}, testLogger())

	report := svc.GenerateReport(context.Background(), "patient-1", sampleResults())
	assert.Contains(t, report, "주의")
}
