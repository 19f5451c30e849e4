package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	var gotPath string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":" niebla "},"done":true}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/v1")
	require.NoError(t, err)
	out, err := c.CompleteWithSystem(context.Background(), "llama3", "sys", "hola")
	require.NoError(t, err)
	assert.Equal(t, "niebla", out)
	assert.Equal(t, "/api/chat", gotPath)
	assert.Equal(t, false, body["stream"])
	assert.Equal(t, "llama3", body["model"])
}

func TestChatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'nope' not found"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "nope", "hola")
	assert.Error(t, err)
}
