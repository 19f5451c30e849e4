package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Table coordinates a multiplayer story: every submission, join, closure and
// clock tick runs under one mutex, and the events they produce are delivered
// only after it is released.
type Table struct {
	mu       sync.Mutex
	engine   *Engine
	notifier Notifier
	logger   zerolog.Logger
	ctx      context.Context

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newTable(ctx context.Context, engine *Engine, notifier Notifier, logger zerolog.Logger) *Table {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Table{
		engine:   engine,
		notifier: notifier,
		logger:   logger.With().Str("storyId", engine.ID()).Logger(),
		ctx:      ctx,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// run drives the turn clock until the story closes or the table is halted.
func (t *Table) run(ticks <-chan time.Time, stopTicker func()) {
	defer close(t.done)
	defer stopTicker()
	for {
		select {
		case <-t.stop:
			return
		case <-t.ctx.Done():
			return
		case <-ticks:
			if !t.tick() {
				return
			}
		}
	}
}

func (t *Table) tick() bool {
	t.mu.Lock()
	if t.engine.Closed() {
		t.mu.Unlock()
		return false
	}
	f := t.engine.Tick(t.ctx)
	events := t.engine.Drain()
	t.mu.Unlock()

	if f != nil {
		t.logger.Info().Str("uid", f.UID).Int("turnIndex", f.TurnIndex).Msg("turn forfeited")
	}
	t.publish(t.ctx, events)
	return true
}

func (t *Table) SubmitWord(ctx context.Context, uid, word string) (StoryWord, Story, error) {
	t.mu.Lock()
	w, err := t.engine.SubmitWord(ctx, uid, word)
	snap := t.engine.Snapshot()
	closed := t.engine.Closed()
	events := t.engine.Drain()
	t.mu.Unlock()

	if err != nil {
		return StoryWord{}, snap, err
	}
	t.logger.Debug().Str("uid", uid).Str("word", w.Word).Int("index", w.Index).Msg("word accepted")
	if closed {
		t.halt()
	}
	t.publish(ctx, events)
	return w, snap, nil
}

func (t *Table) ForceClose(ctx context.Context, uid string) (Story, error) {
	t.mu.Lock()
	err := t.engine.ForceClose(ctx, uid)
	snap := t.engine.Snapshot()
	events := t.engine.Drain()
	t.mu.Unlock()

	if err != nil {
		return snap, err
	}
	t.halt()
	t.publish(ctx, events)
	return snap, nil
}

// Join adds p to the roster and reports whether p is new to it.
func (t *Table) Join(p Participant) (Story, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	before := t.engine.roster.Size()
	if err := t.engine.Join(p); err != nil {
		return t.engine.Snapshot(), false, err
	}
	return t.engine.Snapshot(), t.engine.roster.Size() > before, nil
}

func (t *Table) Snapshot() Story {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Snapshot()
}

// halt stops the clock driver. Safe to call more than once.
func (t *Table) halt() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *Table) publish(ctx context.Context, events []Event) {
	for _, ev := range events {
		t.notifier.Notify(ctx, ev)
	}
}
