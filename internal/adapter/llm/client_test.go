package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/floatchat/internal/domain"
	"github.com/couchcryptid/floatchat/internal/observability"
)

const (
	testKey           = "test-key"
	testModel         = "test-model"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// completionServer fakes an OpenAI-compatible /chat/completions endpoint
// that answers every request with content.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testModel, req.Model)
		assert.Len(t, req.Messages, 2)

		w.Header().Set(headerContentType, contentTypeJSON)
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  testModel,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		}))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(baseURL string) *Client {
	return NewClient("mistral", testKey, baseURL+"/v1", testModel, testMetrics(), discardLogger)
}

func TestClient_Augment_Success(t *testing.T) {
	srv := completionServer(t, "```json\n{\"parameter\": \"temperature\", \"region\": \"Arabian Sea\", \"chart_hint\": \"histogram\"}\n```")

	c := testClient(srv.URL)
	candidate, err := c.Augment(context.Background(), "temperature distribution in the Arabian Sea", domain.DefaultVocabulary())
	require.NoError(t, err)

	assert.Equal(t, "temperature", candidate.Parameter)
	assert.Equal(t, "Arabian Sea", candidate.Region)
	assert.Equal(t, "histogram", candidate.ChartHint)
}

func TestClient_Augment_UnparseableAnswer(t *testing.T) {
	srv := completionServer(t, "I cannot help with that.")

	c := testClient(srv.URL)
	_, err := c.Augment(context.Background(), "hello", domain.DefaultVocabulary())
	require.Error(t, err)

	var augErr *domain.AugmenterError
	require.ErrorAs(t, err, &augErr)
	assert.Equal(t, "mistral", augErr.Provider)
	assert.Equal(t, "augment", augErr.Op)
}

func TestClient_Elaborate_Success(t *testing.T) {
	srv := completionServer(t, "  Two floats in the Arabian Sea averaged 25.5°C.  ")

	c := testClient(srv.URL)
	text, err := c.Elaborate(context.Background(), domain.ElaborationRequest{
		Question:    "temperature in the Arabian Sea",
		Summary:     "2 profiles in Arabian Sea, mean temperature 25.5°C",
		ChartType:   domain.ChartHistogram,
		RecordCount: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Two floats in the Arabian Sea averaged 25.5°C.", text)
}

func TestClient_EmptyCompletion(t *testing.T) {
	srv := completionServer(t, "   ")

	c := testClient(srv.URL)
	_, err := c.Elaborate(context.Background(), domain.ElaborationRequest{Question: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty completion")
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit"}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Augment(context.Background(), "temperature", domain.DefaultVocabulary())
	require.Error(t, err)

	var augErr *domain.AugmenterError
	require.ErrorAs(t, err, &augErr)
	assert.Equal(t, "augment", augErr.Op)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := completionServer(t, "{}")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(srv.URL)
	_, err := c.Augment(ctx, "temperature", domain.DefaultVocabulary())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "bare object", content: `{"parameter": "salinity"}`, want: "salinity"},
		{name: "json fence", content: "```json\n{\"parameter\": \"salinity\"}\n```", want: "salinity"},
		{name: "plain fence", content: "```\n{\"parameter\": \"depth\"}\n```", want: "depth"},
		{name: "surrounding prose", content: `Here you go: {"parameter": "temperature"} Hope that helps.`, want: "temperature"},
		{name: "not json", content: "no idea", wantErr: true},
		{name: "truncated", content: `{"parameter": "temp`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseCandidate(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Parameter)
		})
	}
}

func TestAugmentSystemPrompt_ListsVocabulary(t *testing.T) {
	prompt := augmentSystemPrompt(domain.DefaultVocabulary())
	for _, want := range []string{`"temperature"`, `"Arabian Sea"`, `"all"`, `"comparison_bars"`, "quality_filter"} {
		assert.Contains(t, prompt, want)
	}
}
