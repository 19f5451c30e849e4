package game

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// UntitledTitle is used when the title generator answers with nothing.
const UntitledTitle = "HISTORIA SIN TÍTULO"

const fallbackTitleWords = 4

// Closer runs the active -> closed transition: freeze, title, completion event.
type Closer struct {
	Titles  TitleGenerator
	Timeout time.Duration
	Logger  zerolog.Logger
}

func (c *Closer) Close(ctx context.Context, s *Story, trigger string) Event {
	text := s.Text()
	title := c.title(ctx, s.ID, text)

	s.Status = StatusClosed
	s.Title = title
	s.CurrentTurnUID = ""
	s.TurnEndsAt = time.Time{}
	s.TimeLeft = 0
	s.Critical = false

	c.Logger.Info().Str("storyId", s.ID).Str("title", title).Int("words", len(s.Words)).Str("trigger", trigger).Msg("story closed")

	snap := s.clone()
	return Event{
		Type:    EventStoryComplete,
		StoryID: s.ID,
		Payload: map[string]any{
			"title":     title,
			"text":      text,
			"wordCount": len(s.Words),
			"trigger":   trigger,
		},
		Story: &snap,
	}
}

func (c *Closer) title(ctx context.Context, storyID, text string) string {
	if c.Titles == nil {
		return FallbackTitle(text)
	}
	t, err := boundedCall(ctx, c.Timeout, func(ctx context.Context) (string, error) {
		return c.Titles.TitleFor(ctx, text)
	})
	if err != nil {
		generatorFallbacks.WithLabelValues("title").Inc()
		c.Logger.Warn().Err(err).Str("storyId", storyID).Msg("title generation failed, using fallback")
		return FallbackTitle(text)
	}
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" {
		return UntitledTitle
	}
	return t
}

// FallbackTitle is the first four words upper-cased, or PlaceholderTitle for an
// empty story.
func FallbackTitle(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return PlaceholderTitle
	}
	if len(fields) > fallbackTitleWords {
		fields = fields[:fallbackTitleWords]
	}
	return strings.ToUpper(strings.Join(fields, " "))
}

// boundedCall runs fn with a deadline and stops waiting once it passes, even if
// fn ignores its context.
func boundedCall[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()
	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
