package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletion(t *testing.T) {
	var gotAuth, gotPath string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  luna \n"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := New("sk-test", srv.URL+"/v1/")
	out, err := c.CompleteWithSystem(context.Background(), "gpt-4o-mini", "sys", "hola")
	require.NoError(t, err)
	assert.Equal(t, "luna", out)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestTextCompletion(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"t1","object":"text_completion","choices":[{"index":0,"text":" sol ","finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := New("sk-test", srv.URL)
	out, err := c.Complete(context.Background(), "davinci-002", "hola")
	require.NoError(t, err)
	assert.Equal(t, "sol", out)
	assert.Equal(t, "/v1/completions", gotPath)
}

func TestMissingKey(t *testing.T) {
	_, err := New("", "").Complete(context.Background(), "gpt-4o-mini", "hola")
	assert.EqualError(t, err, "missing OPENAI_API_KEY")
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	_, err := New("sk-test", srv.URL).Complete(context.Background(), "gpt-4o-mini", "hola")
	assert.Error(t, err)
}
