package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamar-Folarin/commit-health/internal/config"
	"github.com/Kamar-Folarin/commit-health/internal/models"
)

func testFacts() Facts {
	return Facts{
		Repository:    "golang/go",
		Score:         55,
		BusFactorRisk: true,
		Distribution: map[models.Category]int{
			models.CategoryFeature: 3,
			models.CategoryBugfix:  1,
		},
		Trend: models.TrendFalling,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeOpenAI streams chunks as server sent events and records the request
func fakeOpenAI(t *testing.T, chunks []string, got *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			event := openai.ChatCompletionStreamResponse{
				Choices: []openai.ChatCompletionStreamChoice{
					{Delta: openai.ChatCompletionStreamChoiceDelta{Content: chunk}},
				},
			}
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAnalyst(t *testing.T, baseURL string) *Analyst {
	t.Helper()
	a, err := NewAnalyst(config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: baseURL + "/v1",
		Model:   "test-model",
	}, quietLogger())
	require.NoError(t, err)
	return a
}

func TestNewAnalystDisabledWithoutKey(t *testing.T) {
	a, err := NewAnalyst(config.OpenAIConfig{}, quietLogger())

	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewAnalystDefaultModel(t *testing.T) {
	a, err := NewAnalyst(config.OpenAIConfig{APIKey: "k"}, nil)

	require.NoError(t, err)
	assert.Equal(t, config.DefaultOpenAIModel, a.model)
}

func TestDiagnoseStreamsIntoWriter(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := fakeOpenAI(t, []string{"**Overall**: ", "at risk", "."}, &req)
	a := newTestAnalyst(t, srv.URL)

	var out bytes.Buffer
	n, err := a.Diagnose(context.Background(), testFacts(), &out)

	require.NoError(t, err)
	assert.Equal(t, "**Overall**: at risk.", out.String())
	assert.Equal(t, out.Len(), n)

	assert.Equal(t, "test-model", req.Model)
	assert.True(t, req.Stream)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, "golang/go")
	assert.Contains(t, req.Messages[1].Content, "55/100")
}

func TestDiagnoseEmptyResponse(t *testing.T) {
	srv := fakeOpenAI(t, nil, nil)
	a := newTestAnalyst(t, srv.URL)

	_, err := a.Diagnose(context.Background(), testFacts(), io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestDiagnoseAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()
	a := newTestAnalyst(t, srv.URL)

	_, err := a.Diagnose(context.Background(), testFacts(), io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to call LLM")
}

func TestUserPrompt(t *testing.T) {
	prompt := UserPrompt(testFacts())

	assert.Contains(t, prompt, "Evaluate the project: golang/go")
	assert.Contains(t, prompt, "Health score: 55/100")
	assert.Contains(t, prompt, "Activity trend: Falling")
	assert.Contains(t, prompt, "Bus factor risk: High Risk")
	assert.Contains(t, prompt, "  - Feature: 3 (75.0%)\n  - Bugfix: 1 (25.0%)\n")
	assert.NotContains(t, prompt, "Docs")
}

func TestUserPromptNoCommits(t *testing.T) {
	prompt := UserPrompt(Facts{Repository: "a/b", Trend: models.TrendStable})

	assert.Contains(t, prompt, "Bus factor risk: Safe")
	assert.Contains(t, prompt, "Work distribution: no commits")
}

func TestFactsFromReport(t *testing.T) {
	report := &models.SyncReport{
		SyncRun:      models.SyncRun{Repository: "golang/go"},
		Assessment:   models.HealthAssessment{Score: 80, BusFactorRisk: true},
		Distribution: map[models.Category]int{models.CategoryDocs: 2},
		Trend:        models.TrendRising,
	}

	facts := FactsFromReport(report)

	assert.Equal(t, "golang/go", facts.Repository)
	assert.Equal(t, 80, facts.Score)
	assert.True(t, facts.BusFactorRisk)
	assert.Equal(t, 2, facts.Distribution[models.CategoryDocs])
	assert.Equal(t, models.TrendRising, facts.Trend)
}
