// Package llm implements domain.Augmenter over OpenAI-compatible chat
// completion APIs (Mistral and Groq both expose one).
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/couchcryptid/floatchat/internal/domain"
	"github.com/couchcryptid/floatchat/internal/observability"
)

const (
	samplingTemperature = 0.3
	augmentMaxTokens    = 300
	elaborateMaxTokens  = 600
)

// Client is one chat completion provider.
type Client struct {
	name    string
	model   string
	client  *openai.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a provider client. baseURL must include the API version
// prefix, e.g. "https://api.mistral.ai/v1".
func NewClient(name, apiKey, baseURL, model string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		name:    name,
		model:   model,
		client:  openai.NewClientWithConfig(cfg),
		metrics: metrics,
		logger:  logger,
	}
}

// Name returns the provider name used in logs and metrics.
func (c *Client) Name() string { return c.name }

// Augment asks the model for a JSON intent restricted to vocab.
func (c *Client) Augment(ctx context.Context, text string, vocab domain.Vocabulary) (domain.IntentCandidate, error) {
	content, err := c.complete(ctx, "augment", augmentSystemPrompt(vocab), text, augmentMaxTokens)
	if err != nil {
		return domain.IntentCandidate{}, err
	}
	candidate, err := parseCandidate(content)
	if err != nil {
		return domain.IntentCandidate{}, &domain.AugmenterError{Provider: c.name, Op: "augment", Err: err}
	}
	return candidate, nil
}

// Elaborate asks the model to rewrite the summary as a short explanation.
func (c *Client) Elaborate(ctx context.Context, req domain.ElaborationRequest) (string, error) {
	user := fmt.Sprintf("USER QUESTION: %s\n\nRESULT SUMMARY: %s\n\nCHART: %s (%d profiles)",
		req.Question, req.Summary, req.ChartType, req.RecordCount)
	content, err := c.complete(ctx, "elaborate", elaborateSystemPrompt, user, elaborateMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *Client) complete(ctx context.Context, op, system, user string, maxTokens int) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: samplingTemperature,
		MaxTokens:   maxTokens,
	})
	c.metrics.AugmenterDuration.WithLabelValues(c.name, op).Observe(time.Since(start).Seconds())

	if err == nil && (len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "") {
		err = errors.New("empty completion")
	}
	if err != nil {
		c.metrics.AugmenterRequests.WithLabelValues(c.name, op, "error").Inc()
		return "", &domain.AugmenterError{Provider: c.name, Op: op, Err: err}
	}

	c.metrics.AugmenterRequests.WithLabelValues(c.name, op, "success").Inc()
	c.logger.Debug("augmenter completion",
		"provider", c.name,
		"op", op,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}

// parseCandidate decodes the model's JSON answer, tolerating markdown fences
// and prose around the object.
func parseCandidate(content string) (domain.IntentCandidate, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if i, j := strings.Index(content, "{"), strings.LastIndex(content, "}"); i >= 0 && j > i {
		content = content[i : j+1]
	}

	var c domain.IntentCandidate
	if err := json.Unmarshal([]byte(content), &c); err != nil {
		return domain.IntentCandidate{}, fmt.Errorf("parse intent: %w (response: %.200s)", err, content)
	}
	return c, nil
}

const elaborateSystemPrompt = `You are FloatChat, an oceanographic assistant for ARGO float data in the Indian Ocean.
Rewrite the RESULT SUMMARY as two or three clear sentences for a non-specialist.
Use only the numbers given. Do not invent measurements, dates or regions.`

func augmentSystemPrompt(v domain.Vocabulary) string {
	join := func(items []string) string { return `"` + strings.Join(items, `", "`) + `"` }
	params := make([]string, len(v.Parameters))
	for i, p := range v.Parameters {
		params[i] = string(p)
	}
	regions := make([]string, len(v.Regions))
	for i, r := range v.Regions {
		regions[i] = string(r)
	}
	charts := make([]string, len(v.ChartTypes))
	for i, ct := range v.ChartTypes {
		charts[i] = string(ct)
	}

	return `You extract search filters from questions about ARGO float measurements.
Reply with a single JSON object and nothing else, using these keys:
  "parameter": one of ` + join(params) + ` or ""
  "parameters": list of every parameter mentioned
  "region": one of ` + join(regions) + ` or ""
  "regions": list of every region mentioned
  "date_start", "date_end": "YYYY-MM-DD" or ""
  "depth_min", "depth_max": metres as numbers, or null
  "comparison": true when the user compares regions or parameters
  "chart_hint": one of ` + join(charts) + ` or ""
  "quality_filter": true when the user asks for good quality data only
Leave a key empty when the question does not mention it.`
}
