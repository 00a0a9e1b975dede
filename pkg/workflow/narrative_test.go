package workflow

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableHTTPClient returns a client whose RoundTripper always fails,
// standing in for a network-unreachable OpenAI endpoint without making a
// real outbound call in tests.
func unreachableHTTPClient(t *testing.T) *http.Client {
	t.Helper()
	return &http.Client{Transport: failingRoundTripper{}}
}

type failingRoundTripper struct{}

func (failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, assertRoundTripError
}

var assertRoundTripError = &roundTripError{}

type roundTripError struct{}

func (*roundTripError) Error() string { return "simulated network failure" }

func TestTemplateSummarizer_SummarizesEveryTaskStatus(t *testing.T) {
	now := time.Unix(0, 0)
	summary := &RunSummary{
		WorkflowID: "investigate",
		Status:     RunFailed,
		Tasks: []TaskResult{
			{TaskID: "a", Tool: "run_search", Status: TaskOK, StartedAt: now, FinishedAt: now.Add(time.Second)},
			{TaskID: "b", Tool: "run_search", Status: TaskFailed, Error: "boom"},
			{TaskID: "c", Tool: "run_search", Status: TaskSkipped, Reason: "dependency b did not complete successfully"},
		},
	}

	text, err := TemplateSummarizer{}.Summarize(context.Background(), summary)
	require.NoError(t, err)
	assert.Contains(t, text, "investigate")
	assert.Contains(t, text, "a (run_search): ok")
	assert.Contains(t, text, "b (run_search): failed (boom)")
	assert.Contains(t, text, "c (run_search): skipped (dependency b did not complete successfully)")
}

func TestNewOpenAISummarizerFromEnv_NoKeyReturnsFalse(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, ok := NewOpenAISummarizerFromEnv()
	assert.False(t, ok)
}

func TestNewOpenAISummarizerFromEnv_ReadsOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TEMPERATURE", "0.7")
	t.Setenv("OPENAI_MAX_TOKENS", "1000")

	s, ok := NewOpenAISummarizerFromEnv()
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", s.Model)
	assert.Equal(t, 0.7, s.Temperature)
	assert.Equal(t, 1000, s.MaxTokens)
}

func TestOpenAISummarizer_FallsBackWhenUpstreamUnreachable(t *testing.T) {
	s := &OpenAISummarizer{
		APIKey:     "sk-test",
		Model:      "gpt-4o-mini",
		MaxTokens:  100,
		httpClient: unreachableHTTPClient(t),
	}
	summary := &RunSummary{WorkflowID: "investigate", Status: RunOK}
	text, err := s.Summarize(context.Background(), summary)
	require.NoError(t, err)
	assert.Contains(t, text, "investigate")
}
