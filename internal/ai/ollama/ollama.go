package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const defaultSystemPrompt = "Eres un narrador conciso. Responde con la menor cantidad de palabras posible."

type Client struct {
	Host   string
	client *api.Client
}

func New(host string) (*Client, error) {
	if host == "" {
		host = "http://localhost:11434"
	}
	// the native API lives at the root, not under /v1
	host = strings.TrimSuffix(strings.TrimRight(host, "/"), "/v1")
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host %q: %w", host, err)
	}
	return &Client{Host: host, client: api.NewClient(u, &http.Client{Timeout: 20 * time.Second})}, nil
}

func (c *Client) Complete(ctx context.Context, model string, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, model, "", prompt)
}

func (c *Client) CompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string) (string, error) {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	stream := false
	req := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0.8, "num_predict": 50},
	}
	var out strings.Builder
	err := c.client.Chat(ctx, req, func(r api.ChatResponse) error {
		out.WriteString(r.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
