package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Danielrabaneda/Salas/internal/game"
)

// Exporter appends every completed story to a text archive.
type Exporter struct {
	File   string
	Logger zerolog.Logger
}

func (x Exporter) Notify(_ context.Context, ev game.Event) {
	if ev.Type != game.EventStoryComplete || ev.Story == nil {
		return
	}
	if err := game.ExportStory(*ev.Story, x.File); err != nil {
		x.Logger.Error().Err(err).Str("storyId", ev.StoryID).Str("file", x.File).Msg("export failed")
		return
	}
	x.Logger.Info().Str("storyId", ev.StoryID).Str("file", x.File).Msg("story exported")
}
