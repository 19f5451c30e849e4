// Package notify delivers game events to the outside world.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Danielrabaneda/Salas/internal/game"
)

// Fanout hands each event to every notifier in order. A notifier that panics
// is logged and skipped; the rest still run.
type Fanout struct {
	notifiers []game.Notifier
	logger    zerolog.Logger
}

func NewFanout(logger zerolog.Logger, notifiers ...game.Notifier) *Fanout {
	return &Fanout{notifiers: notifiers, logger: logger.With().Str("component", "notify").Logger()}
}

func (f *Fanout) Add(n game.Notifier) { f.notifiers = append(f.notifiers, n) }

func (f *Fanout) Notify(ctx context.Context, ev game.Event) {
	for _, n := range f.notifiers {
		f.deliver(ctx, n, ev)
	}
}

func (f *Fanout) deliver(ctx context.Context, n game.Notifier, ev game.Event) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error().Str("storyId", ev.StoryID).Str("type", string(ev.Type)).
				Str("notifier", fmt.Sprintf("%T", n)).Interface("panic", r).Msg("notifier panicked")
		}
	}()
	n.Notify(ctx, ev)
}

// LogNotifier writes one line per event.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (l LogNotifier) Notify(_ context.Context, ev game.Event) {
	e := l.Logger.Info().Str("storyId", ev.StoryID).Str("type", string(ev.Type))
	switch ev.Type {
	case game.EventTurn:
		e = e.Interface("uid", ev.Payload["uid"])
	case game.EventStoryComplete:
		e = e.Interface("title", ev.Payload["title"]).Interface("words", ev.Payload["wordCount"])
	}
	e.Msg("event")
}
