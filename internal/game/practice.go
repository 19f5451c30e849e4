package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type PracticeState int

const (
	AwaitingHuman PracticeState = iota
	GeneratingAIReply
	Finished
)

func (s PracticeState) String() string {
	switch s {
	case AwaitingHuman:
		return "awaiting_human"
	case GeneratingAIReply:
		return "generating_ai_reply"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("PracticeState(%d)", int(s))
}

// AIParticipant is the automated turn-taker seated second in every practice story.
var AIParticipant = Participant{
	UID:         AIParticipantUID,
	DisplayName: "IA",
	Reliability: 3,
	Online:      true,
	IsAI:        true,
}

// Practice alternates one human with the word generator. The lock is not held
// while the generator runs; submissions arriving meanwhile are rejected as out
// of turn.
type Practice struct {
	mu       sync.Mutex
	engine   *Engine
	state    PracticeState
	human    string
	cfg      PracticeConfig
	words    WordGenerator
	timeout  time.Duration
	notifier Notifier
	logger   zerolog.Logger
}

func newPractice(engine *Engine, human string, cfg PracticeConfig, words WordGenerator, timeout time.Duration, notifier Notifier, logger zerolog.Logger) *Practice {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Practice{
		engine:   engine,
		state:    AwaitingHuman,
		human:    human,
		cfg:      cfg,
		words:    words,
		timeout:  timeout,
		notifier: notifier,
		logger:   logger.With().Str("storyId", engine.ID()).Logger(),
	}
}

func (p *Practice) State() PracticeState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Practice) Snapshot() Story {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Snapshot()
}

// SubmitWord appends the human's word and, unless that finished the story,
// the generator's reply. The returned snapshot includes both.
func (p *Practice) SubmitWord(ctx context.Context, uid, raw string) (StoryWord, Story, error) {
	p.mu.Lock()
	if p.engine.Closed() {
		snap := p.engine.Snapshot()
		p.mu.Unlock()
		submissionsRejected.WithLabelValues("story_closed").Inc()
		return StoryWord{}, snap, ErrStoryClosed
	}
	if p.state != AwaitingHuman || uid != p.human {
		snap := p.engine.Snapshot()
		p.mu.Unlock()
		submissionsRejected.WithLabelValues("not_your_turn").Inc()
		return StoryWord{}, snap, ErrNotYourTurn
	}
	w, err := p.engine.SubmitWord(ctx, uid, raw)
	if err != nil {
		snap := p.engine.Snapshot()
		p.mu.Unlock()
		return StoryWord{}, snap, err
	}
	if p.engine.Closed() {
		p.state = Finished
		snap := p.engine.Snapshot()
		events := p.engine.Drain()
		p.mu.Unlock()
		p.publish(ctx, events)
		return w, snap, nil
	}
	p.state = GeneratingAIReply
	contextWords := p.engine.LastWords(ContextWindow)
	events := p.engine.Drain()
	p.mu.Unlock()
	p.publish(ctx, events)

	reply := p.generate(ctx, contextWords)

	p.mu.Lock()
	if p.engine.Closed() {
		// abandoned while the generator was running
		p.state = Finished
		snap := p.engine.Snapshot()
		p.mu.Unlock()
		return w, snap, nil
	}
	if _, err := p.engine.SubmitWord(ctx, AIParticipantUID, reply); err != nil {
		p.mu.Unlock()
		panic(fmt.Sprintf("game: practice %s rejected generated word %q: %v", p.engine.ID(), reply, err))
	}
	if p.engine.Closed() {
		p.state = Finished
	} else {
		p.state = AwaitingHuman
	}
	snap := p.engine.Snapshot()
	events = p.engine.Drain()
	p.mu.Unlock()

	p.logger.Debug().Str("human", w.Word).Str("ai", reply).Int("words", len(snap.Words)).Msg("practice round")
	p.publish(ctx, events)
	return w, snap, nil
}

// ForceClose abandons the practice. Only the human may do so.
func (p *Practice) ForceClose(ctx context.Context, uid string) (Story, error) {
	p.mu.Lock()
	err := p.engine.ForceClose(ctx, uid)
	if err == nil {
		p.state = Finished
	}
	snap := p.engine.Snapshot()
	events := p.engine.Drain()
	p.mu.Unlock()

	if err != nil {
		return snap, err
	}
	p.publish(ctx, events)
	return snap, nil
}

func (p *Practice) generate(ctx context.Context, contextWords []string) string {
	if p.words == nil {
		return FallbackWord
	}
	raw, err := boundedCall(ctx, p.timeout, func(ctx context.Context) (string, error) {
		return p.words.NextWord(ctx, contextWords, p.cfg.Theme, p.cfg.Difficulty)
	})
	if err != nil {
		generatorFallbacks.WithLabelValues("word").Inc()
		p.logger.Warn().Err(err).Msg("word generation failed, using fallback")
		return FallbackWord
	}
	if w := NormalizeGeneratedWord(raw); w != "" {
		return w
	}
	generatorFallbacks.WithLabelValues("empty_word").Inc()
	return EmptyReplyWord
}

// halt exists so Practice and Table share the coordinator contract; practice
// stories are untimed.
func (p *Practice) halt() {}

func (p *Practice) publish(ctx context.Context, events []Event) {
	for _, ev := range events {
		if ev.Type == EventTurn {
			continue
		}
		p.notifier.Notify(ctx, ev)
	}
}
