package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const defaultSystemPrompt = "Eres un narrador conciso. Responde con la menor cantidad de palabras posible."

type Client struct {
	APIKey  string
	BaseURL string
	client  *goopenai.Client
}

// New builds a client for the OpenAI API or any compatible endpoint. baseURL
// may be given with or without the /v1 suffix.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/v1")
	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL + "/v1"
	cfg.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	return &Client{APIKey: apiKey, BaseURL: baseURL, client: goopenai.NewClientWithConfig(cfg)}
}

func (c *Client) Complete(ctx context.Context, model string, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, model, "", prompt)
}

func (c *Client) CompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("missing OPENAI_API_KEY")
	}
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	if strings.Contains(model, "gpt") {
		return c.chatCompleteWithSystem(ctx, model, systemPrompt, prompt)
	}
	return c.textComplete(ctx, model, prompt)
}

func (c *Client) chatCompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.8,
		MaxTokens:   50,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) textComplete(ctx context.Context, model string, prompt string) (string, error) {
	resp, err := c.client.CreateCompletion(ctx, goopenai.CompletionRequest{
		Model:       model,
		Prompt:      prompt,
		Temperature: 0.8,
		MaxTokens:   50,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Text), nil
}
