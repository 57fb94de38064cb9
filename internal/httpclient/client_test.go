package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequest_DecodesOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "MyApp", r.Header.Get("X-Title"))
		assert.Empty(t, r.Header.Values("HTTP-Referer"))
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer server.Close()

	var out struct {
		ID string `json:"id"`
	}
	headers := map[string]string{"X-Title": "MyApp", "HTTP-Referer": ""}
	err := SendRequest(context.Background(), server.Client(), http.MethodPost, server.URL, headers, map[string]string{"a": "b"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "abc", out.ID)
}

func TestSendRequest_NonOKIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 201 is not a success for a chat completion
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`created`))
	}))
	defer server.Close()

	err := SendRequest(context.Background(), server.Client(), http.MethodGet, server.URL, nil, nil, nil)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusCreated, upstream.StatusCode)
	assert.Equal(t, "created", string(upstream.Body))
	assert.False(t, IsTimeout(err))
}

func TestSendRequest_TimeoutIsDetected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := &http.Client{Timeout: 20 * time.Millisecond}
	err := SendRequest(context.Background(), client, http.MethodGet, server.URL, nil, nil, nil)

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}
