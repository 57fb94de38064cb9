package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nulzo/openroute/internal/config"
	"github.com/nulzo/openroute/internal/httpclient"
	"github.com/nulzo/openroute/internal/llm"
	"github.com/nulzo/openroute/internal/llm/openai"
	"github.com/nulzo/openroute/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const completionBody = `{
	"id": "gen-123",
	"object": "chat.completion",
	"created": 1677652288,
	"model": "openai/gpt-4",
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": "Hello there!"},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 9, "completion_tokens": 12, "total_tokens": 21}
}`

func newAdapter(t *testing.T, baseURL string) llm.Provider {
	t.Helper()
	adapter, err := openai.NewAdapter(config.ProviderConfig{
		ID:      "openrouter-test",
		Type:    "openrouter",
		APIKey:  "test-key",
		BaseURL: baseURL,
		Config:  map[string]string{"app_name": "MyApp", "app_url": "https://myapp.com"},
	})
	require.NoError(t, err)
	return adapter
}

func TestChat_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "MyApp", r.Header.Get("X-Title"))
		assert.Equal(t, "https://myapp.com", r.Header.Get("HTTP-Referer"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "openai/gpt-4", payload["model"])
		assert.Equal(t, 0.7, payload["temperature"])
		assert.Equal(t, float64(500), payload["max_tokens"])
		assert.NotContains(t, payload, "models")

		_, _ = w.Write([]byte(completionBody))
	}))
	defer server.Close()

	adapter := newAdapter(t, server.URL+"/api/v1")

	resp, err := adapter.Chat(context.Background(), &api.ChatRequest{
		Model:       "openai/gpt-4",
		Models:      []string{"ignored"},
		Temperature: api.Ptr(0.7),
		MaxTokens:   500,
		Messages: []api.ChatMessage{
			api.TextMessage(api.System, "You are a helpful AI assistant."),
			api.TextMessage(api.User, "Explain quantum computing in simple terms."),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello there!", resp.FirstMessage().Content.Text)
	assert.Equal(t, 21, resp.Usage.TotalTokens)
	assert.Equal(t, "openrouter-test", resp.Provider)
	assert.Equal(t, "openrouter-test", adapter.Name())
	assert.Equal(t, "openrouter", adapter.Type())
}

func TestChat_NonOKStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit exceeded","type":"rate_limit","code":429}}`))
	}))
	defer server.Close()

	adapter := newAdapter(t, server.URL)

	resp, err := adapter.Chat(context.Background(), &api.ChatRequest{Model: "openai/gpt-4"})
	assert.Nil(t, resp)

	var problem *api.Problem
	require.True(t, errors.As(err, &problem))
	assert.Equal(t, http.StatusTooManyRequests, problem.Status)
	assert.Equal(t, "Rate limit exceeded", problem.Detail)
	assert.Equal(t, "rate_limit", problem.Extensions["upstream_type"])
}

func TestChat_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(completionBody))
	}))
	defer server.Close()

	core, logs := observer.New(zap.InfoLevel)
	adapter, err := openai.NewAdapterWithClient(config.ProviderConfig{
		ID:      "slow",
		Type:    "openai",
		APIKey:  "k",
		BaseURL: server.URL,
		Timeout: 20 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	adapter.WithLogger(zap.New(core))

	resp, err := adapter.Chat(context.Background(), &api.ChatRequest{Model: "gpt-4"})
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, httpclient.IsTimeout(err))

	timeouts := logs.FilterMessage("Timeout with model").All()
	require.Len(t, timeouts, 1)
	assert.Equal(t, "gpt-4", timeouts[0].ContextMap()["model"])
	assert.Equal(t, "slow", timeouts[0].ContextMap()["provider"])
	assert.Zero(t, logs.FilterMessage("Request exception with model").Len())
}

func TestChat_TransportErrorIsNotTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	core, logs := observer.New(zap.InfoLevel)
	adapter, err := openai.NewAdapterWithClient(config.ProviderConfig{
		ID:      "gone",
		Type:    "openai",
		APIKey:  "k",
		BaseURL: url,
	}, nil)
	require.NoError(t, err)
	adapter.WithLogger(zap.New(core))

	_, err = adapter.Chat(context.Background(), &api.ChatRequest{Model: "gpt-4"})
	require.Error(t, err)
	assert.False(t, httpclient.IsTimeout(err))
	assert.Equal(t, 1, logs.FilterMessage("Request exception with model").Len())
	assert.Zero(t, logs.FilterMessage("Timeout with model").Len())
}

func TestChat_ForwardsExplicitZeroTemperature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload, "temperature")
		assert.Equal(t, float64(0), payload["temperature"])
		assert.Equal(t, float64(0), payload["seed"])
		assert.NotContains(t, payload, "top_p")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer server.Close()

	adapter := newAdapter(t, server.URL)

	_, err := adapter.Chat(context.Background(), &api.ChatRequest{
		Model:       "openai/gpt-4",
		Temperature: api.Ptr(0.0),
		Seed:        api.Ptr(0),
		MaxTokens:   10,
		Messages:    []api.ChatMessage{api.TextMessage(api.User, "hi")},
	})
	require.NoError(t, err)
}

func TestModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[
			{"id":"openai/gpt-4","name":"OpenAI: GPT-4","context_length":8191,"pricing":{"prompt":"0.00003","completion":"0.00006"}},
			{"id":"mistralai/mixtral-8x7b-instruct","name":"Mixtral 8x7B Instruct"}
		]}`))
	}))
	defer server.Close()

	adapter := newAdapter(t, server.URL)

	models, err := adapter.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "OpenAI: GPT-4", models[0].Name)
	assert.Equal(t, 8191, models[0].ContextLength)
	assert.Equal(t, "0.00003", models[0].Pricing.Prompt)
	assert.Equal(t, "openrouter-test", models[1].Provider)
}

func TestHealth(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	adapter := newAdapter(t, server.URL)
	assert.NoError(t, adapter.Health(context.Background()))

	status = http.StatusUnauthorized
	assert.EqualError(t, adapter.Health(context.Background()), "health check failed with status: 401")
}

func TestNewAdapter_DefaultBaseURLs(t *testing.T) {
	for _, typ := range []string{"openai", "openrouter", "groq"} {
		_, err := llm.Get(typ)
		assert.NoError(t, err, typ)
	}

	_, err := openai.NewAdapterWithClient(config.ProviderConfig{ID: "x", Type: "unknown"}, nil)
	assert.Error(t, err)
}
