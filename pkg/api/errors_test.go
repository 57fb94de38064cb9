package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblem_MarshalFlattensExtensions(t *testing.T) {
	p := ProviderError(ErrAllModelsFailed, errors.New("boom"), WithExtension("attempt_number", 3))

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, float64(http.StatusBadGateway), out["status"])
	assert.Equal(t, "Upstream Provider Error", out["title"])
	assert.Equal(t, float64(3), out["attempt_number"])
	assert.NotContains(t, out, "Log")
}

func TestProblem_UnwrapsLog(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	p := InternalError("failed", cause)
	assert.ErrorIs(t, p, cause)
}

func TestContent_UnionJSON(t *testing.T) {
	var m ChatMessage
	require.NoError(t, json.Unmarshal([]byte(`{"role":"user","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}`), &m))
	assert.Equal(t, "ab", m.Content.String())

	require.NoError(t, json.Unmarshal([]byte(`{"role":"assistant","content":null}`), &m))
}

func TestChatRequest_CloneDropsFallbackFields(t *testing.T) {
	req := &ChatRequest{Model: "auto", Models: []string{"a", "b"}, Temperature: Ptr(0.7)}
	c := req.Clone("a")

	assert.Equal(t, "a", c.Model)
	assert.Nil(t, c.Models)
	require.NotNil(t, c.Temperature)
	assert.Equal(t, 0.7, *c.Temperature)
	assert.Equal(t, "auto", req.Model)
	assert.Len(t, req.Models, 2)
}

func TestChatRequest_ExplicitZeroSurvivesJSON(t *testing.T) {
	var req ChatRequest
	require.NoError(t, json.Unmarshal([]byte(`{"messages":[],"temperature":0}`), &req))
	require.NotNil(t, req.Temperature)
	assert.Zero(t, *req.Temperature)
	assert.Nil(t, req.TopP)

	out, err := json.Marshal(req.Clone("a/one"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"temperature":0`)
	assert.NotContains(t, string(out), "top_p")
}
