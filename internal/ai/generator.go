package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Danielrabaneda/Salas/internal/game"
)

var ErrEmptyResponse = errors.New("empty response from provider")

const (
	wordSystemPrompt  = `Eres un jugador experto de "One Word Story".`
	titleSystemPrompt = "Eres un experto en crear títulos atractivos y creativos."
)

var difficultyInstructions = map[game.Difficulty]string{
	game.DifficultyEasy:   "Usa vocabulario simple y común.",
	game.DifficultyNormal: "Mantén un lenguaje equilibrado y fluido.",
	game.DifficultyHard:   "Usa vocabulario avanzado, poético o técnico si encaja.",
}

var (
	_ game.WordGenerator  = (*Generator)(nil)
	_ game.TitleGenerator = (*Generator)(nil)
)

// Generator adapts a Provider to the game's word and title ports.
type Generator struct {
	provider Provider
	model    string
	logger   zerolog.Logger
}

func NewGenerator(p Provider, model string, logger zerolog.Logger) *Generator {
	return &Generator{
		provider: p,
		model:    model,
		logger:   logger.With().Str("component", "ai").Str("model", model).Logger(),
	}
}

// NextWord asks for a single word continuing the story. The reply is returned
// trimmed but otherwise raw; the game normalizes it.
func (g *Generator) NextWord(ctx context.Context, contextWords []string, theme string, difficulty game.Difficulty) (string, error) {
	return g.complete(ctx, "word", wordSystemPrompt, WordPrompt(contextWords, theme, difficulty))
}

// TitleFor asks for a short title for the finished text.
func (g *Generator) TitleFor(ctx context.Context, fullText string) (string, error) {
	t, err := g.complete(ctx, "title", titleSystemPrompt, TitlePrompt(fullText))
	if err != nil {
		return "", err
	}
	return strings.Trim(t, "\"'«»“”. "), nil
}

func (g *Generator) complete(ctx context.Context, kind, system, prompt string) (string, error) {
	start := time.Now()
	out, err := g.provider.CompleteWithSystem(ctx, g.model, system, prompt)
	dur := time.Since(start)
	aiRequestDuration.WithLabelValues(kind, g.model).Observe(dur.Seconds())
	if err != nil {
		aiRequestsTotal.WithLabelValues(kind, g.model, "error").Inc()
		g.logger.Warn().Err(err).Str("kind", kind).Dur("dur", dur).Msg("generation failed")
		return "", fmt.Errorf("%s generation: %w", kind, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		aiRequestsTotal.WithLabelValues(kind, g.model, "empty").Inc()
		return "", ErrEmptyResponse
	}
	aiRequestsTotal.WithLabelValues(kind, g.model, "success").Inc()
	g.logger.Debug().Str("kind", kind).Dur("dur", dur).Str("reply", out).Msg("generation done")
	return out, nil
}

// WordPrompt builds the continuation request from the last game.ContextWindow words.
func WordPrompt(contextWords []string, theme string, difficulty game.Difficulty) string {
	if len(contextWords) > game.ContextWindow {
		contextWords = contextWords[len(contextWords)-game.ContextWindow:]
	}
	instruction, ok := difficultyInstructions[difficulty]
	if !ok {
		instruction = difficultyInstructions[game.DifficultyNormal]
	}
	return fmt.Sprintf(`Historia hasta ahora: "%s"
Temática: %s
Instrucción de nivel: %s
Continúa la historia con SOLO UNA PALABRA que:
- Sea gramaticalmente correcta después de lo anterior
- Haga avanzar la narrativa de forma interesante
- Encaje con la temática
Responde SOLO con una palabra, sin puntuación ni explicaciones.`, strings.Join(contextWords, " "), theme, instruction)
}

func TitlePrompt(fullText string) string {
	return fmt.Sprintf(`Analiza esta historia y genera UN SOLO título corto y llamativo:
Historia: "%s"
Requisitos del título:
- Máximo 6 palabras
- En MAYÚSCULAS
- Captura la esencia de la historia
- Creativo y memorable
- Sin comillas ni puntos
Responde SOLO con el título, nada más.`, fullText)
}
