package ai

import (
	"context"
	"errors"
)

type Provider interface {
	Complete(ctx context.Context, model string, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string) (string, error)
}

var ErrNoProvider = errors.New("no ai provider configured")

// Static answers every prompt with Reply, or fails with Err. The zero value
// always fails, which leaves the game on its deterministic fallbacks.
type Static struct {
	Reply string
	Err   error
}

func (s Static) Complete(ctx context.Context, model string, prompt string) (string, error) {
	return s.CompleteWithSystem(ctx, model, "", prompt)
}

func (s Static) CompleteWithSystem(ctx context.Context, _, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	if s.Reply == "" {
		return "", ErrNoProvider
	}
	return s.Reply, nil
}
