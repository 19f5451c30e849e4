package game

import (
	"context"
	"fmt"
	"strings"
)

// WordGenerator produces the next contribution for the automated turn-taker.
type WordGenerator interface {
	NextWord(ctx context.Context, contextWords []string, theme string, difficulty Difficulty) (string, error)
}

// TitleGenerator produces a short title for a finished story.
type TitleGenerator interface {
	TitleFor(ctx context.Context, fullText string) (string, error)
}

// Notifier receives fire-and-forget events after each transition. Implementations
// must not call back into the engine.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type NotifierFunc func(ctx context.Context, ev Event)

func (f NotifierFunc) Notify(ctx context.Context, ev Event) { f(ctx, ev) }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) {}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyNormal Difficulty = "Normal"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty accepts the English names and the Spanish labels used by the app.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return DifficultyNormal, nil
	case "easy", "fácil", "facil":
		return DifficultyEasy, nil
	case "hard", "difícil", "dificil":
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
