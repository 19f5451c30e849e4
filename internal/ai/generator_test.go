package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danielrabaneda/Salas/internal/game"
)

type fakeProvider struct {
	mu      sync.Mutex
	reply   string
	err     error
	systems []string
	prompts []string
}

func (f *fakeProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, model, "", prompt)
}

func (f *fakeProvider) CompleteWithSystem(_ context.Context, _, system, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestNextWordPrompt(t *testing.T) {
	p := &fakeProvider{reply: "  Bosque  \n"}
	g := NewGenerator(p, "test-model", zerolog.Nop())

	words := make([]string, 20)
	for i := range words {
		words[i] = string(rune('a' + i))
	}
	got, err := g.NextWord(context.Background(), words, "terror", game.DifficultyHard)
	require.NoError(t, err)
	assert.Equal(t, "Bosque", got)

	require.Len(t, p.prompts, 1)
	prompt := p.prompts[0]
	assert.Contains(t, prompt, `"f g h i j k l m n o p q r s t"`)
	assert.NotContains(t, prompt, `"a b`)
	assert.Contains(t, prompt, "Temática: terror")
	assert.Contains(t, prompt, "vocabulario avanzado")
	assert.Equal(t, wordSystemPrompt, p.systems[0])
}

func TestWordPromptDifficulty(t *testing.T) {
	assert.Contains(t, WordPrompt(nil, "humor", game.DifficultyEasy), "vocabulario simple")
	assert.Contains(t, WordPrompt(nil, "humor", game.DifficultyNormal), "equilibrado")
	assert.Contains(t, WordPrompt(nil, "humor", "unknown"), "equilibrado")
}

func TestTitleForStripsQuotes(t *testing.T) {
	p := &fakeProvider{reply: `"LA CASA DEL BOSQUE."`}
	g := NewGenerator(p, "m", zerolog.Nop())
	got, err := g.TitleFor(context.Background(), "había una casa en el bosque")
	require.NoError(t, err)
	assert.Equal(t, "LA CASA DEL BOSQUE", got)
	assert.True(t, strings.Contains(p.prompts[0], `Historia: "había una casa en el bosque"`))
}

func TestGeneratorErrors(t *testing.T) {
	boom := errors.New("boom")
	g := NewGenerator(&fakeProvider{err: boom}, "m", zerolog.Nop())
	_, err := g.NextWord(context.Background(), nil, "terror", game.DifficultyNormal)
	assert.ErrorIs(t, err, boom)

	g = NewGenerator(&fakeProvider{reply: "   "}, "m", zerolog.Nop())
	_, err = g.TitleFor(context.Background(), "texto")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestStaticProvider(t *testing.T) {
	_, err := Static{}.Complete(context.Background(), "m", "p")
	assert.ErrorIs(t, err, ErrNoProvider)

	out, err := Static{Reply: "luna"}.Complete(context.Background(), "m", "p")
	require.NoError(t, err)
	assert.Equal(t, "luna", out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Static{Reply: "luna"}.Complete(ctx, "m", "p")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Provider: "none"})
	require.NoError(t, err)
	assert.IsType(t, Static{}, p)

	p, err = NewProvider(Config{Provider: "ollama", OllamaHost: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = NewProvider(Config{Provider: "gemini"})
	assert.Error(t, err)
}
