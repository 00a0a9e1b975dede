package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

//go:generate mockgen -destination=mocks/mock_summarizer.go -package=mocks -source=narrative.go Summarizer

// Summarizer turns a completed run's structured summary into a short
// narrative. Narrative generation is always best-effort: Engine.Run
// never fails because a Summarizer failed, it only records the error
// on the RunSummary.
type Summarizer interface {
	Summarize(ctx context.Context, summary *RunSummary) (string, error)
}

// TemplateSummarizer is a deterministic, dependency-free Summarizer used
// when no language model is configured. It is always available as a
// fallback for OpenAISummarizer.
type TemplateSummarizer struct{}

// Summarize renders a fixed-format narrative from summary's task list.
func (TemplateSummarizer) Summarize(_ context.Context, summary *RunSummary) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Workflow %q finished with status %s (%d task(s)).\n", summary.WorkflowID, summary.Status, len(summary.Tasks))
	for _, t := range summary.Tasks {
		switch t.Status {
		case TaskOK:
			fmt.Fprintf(&b, "- %s (%s): ok in %s\n", t.TaskID, t.Tool, t.FinishedAt.Sub(t.StartedAt))
		case TaskSkipped:
			fmt.Fprintf(&b, "- %s (%s): skipped (%s)\n", t.TaskID, t.Tool, t.Reason)
		default:
			fmt.Fprintf(&b, "- %s (%s): %s (%s)\n", t.TaskID, t.Tool, t.Status, t.Error)
		}
	}
	return b.String(), nil
}

// OpenAISummarizer calls the OpenAI chat completions REST API directly
// to render a narrative, falling back to TemplateSummarizer on any
// transport or API failure so a flaky upstream never loses the
// narrative entirely.
type OpenAISummarizer struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	httpClient  *http.Client
	fallback    TemplateSummarizer
}

const (
	defaultOpenAIModel       = "gpt-4o-mini"
	defaultOpenAITemperature = 0.2
	defaultOpenAIMaxTokens   = 400
	chatCompletionsURL       = "https://api.openai.com/v1/chat/completions"
)

// NewOpenAISummarizerFromEnv builds an OpenAISummarizer from
// OPENAI_API_KEY, OPENAI_MODEL, OPENAI_TEMPERATURE, and
// OPENAI_MAX_TOKENS. It returns nil, false when no API key is set, so
// callers can fall back to TemplateSummarizer without an extra check.
func NewOpenAISummarizerFromEnv() (*OpenAISummarizer, bool) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, false
	}
	s := &OpenAISummarizer{
		APIKey:      key,
		Model:       defaultOpenAIModel,
		Temperature: defaultOpenAITemperature,
		MaxTokens:   defaultOpenAIMaxTokens,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	if m := os.Getenv("OPENAI_MODEL"); m != "" {
		s.Model = m
	}
	if tStr := os.Getenv("OPENAI_TEMPERATURE"); tStr != "" {
		if t, err := strconv.ParseFloat(tStr, 64); err == nil {
			s.Temperature = t
		}
	}
	if mtStr := os.Getenv("OPENAI_MAX_TOKENS"); mtStr != "" {
		if mt, err := strconv.Atoi(mtStr); err == nil {
			s.MaxTokens = mt
		}
	}
	return s, true
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize asks the configured model to narrate summary. On any
// transport or decode failure it falls back to the deterministic
// template rather than returning an error, since a narrative is always
// more useful degraded than absent when the structured block already
// carries the ground truth.
func (s *OpenAISummarizer) Summarize(ctx context.Context, summary *RunSummary) (string, error) {
	structured, err := TemplateSummarizer{}.Summarize(ctx, summary)
	if err != nil {
		return "", err
	}

	reqBody := chatCompletionRequest{
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: "You summarise Splunk investigation workflow runs for an on-call engineer. Be concise."},
			{Role: "user", Content: structured},
		},
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return s.fallback.Summarize(ctx, summary)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chatCompletionsURL, bytes.NewReader(encoded))
	if err != nil {
		return s.fallback.Summarize(ctx, summary)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return s.fallback.Summarize(ctx, summary)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return s.fallback.Summarize(ctx, summary)
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(body, &decoded); err != nil || len(decoded.Choices) == 0 {
		return s.fallback.Summarize(ctx, summary)
	}
	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return s.fallback.Summarize(ctx, summary)
	}
	return text, nil
}
