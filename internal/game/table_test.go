package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedManager(t *testing.T, tickers TickerGen, rec Notifier) *StoryManager {
	t.Helper()
	m := NewStoryManager(Options{
		Tickers:  tickers,
		Notifier: rec,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(m.Shutdown)
	return m
}

func TestTableForfeitsOnClock(t *testing.T) {
	ctx := context.Background()
	tickers := newManualTickers()
	rec := newRecorder()
	m := timedManager(t, tickers, rec)

	s, err := m.CreateStory(ctx, Participant{UID: "alice"}, Settings{Theme: "terror", PaceSeconds: 2, MaxWords: 10})
	require.NoError(t, err)
	_, err = m.JoinStory(ctx, s.ID, Participant{UID: "bob"}, "")
	require.NoError(t, err)

	tickers.tick()
	tickers.tick()
	ev, ok := rec.next(EventTurn, time.Second)
	require.True(t, ok, "expected a turn event after the clock expired")
	assert.Equal(t, "bob", ev.Payload["uid"])

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.CurrentTurnUID)
	require.Len(t, got.Forfeits, 1)
	assert.Equal(t, "alice", got.Forfeits[0].UID)
	assert.Empty(t, got.Words)

	_, _, err = m.SubmitWord(ctx, s.ID, "alice", "tarde")
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestTableStopsDriverOnClose(t *testing.T) {
	ctx := context.Background()
	tickers := newManualTickers()
	m := timedManager(t, tickers, nil)

	s, err := m.CreateStory(ctx, Participant{UID: "alice"}, Settings{Theme: "humor", PaceSeconds: 5, MaxWords: 2})
	require.NoError(t, err)
	_, err = m.JoinStory(ctx, s.ID, Participant{UID: "bob"}, "")
	require.NoError(t, err)

	_, _, err = m.SubmitWord(ctx, s.ID, "alice", "hola")
	require.NoError(t, err)
	_, closed, err := m.SubmitWord(ctx, s.ID, "bob", "adiós")
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)

	select {
	case <-tickers.stopped:
	case <-time.After(time.Second):
		t.Fatal("clock driver kept running after the story closed")
	}
}

func TestTableSerializesConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()
	m := timedManager(t, newManualTickers(), nil)

	s, err := m.CreateStory(ctx, Participant{UID: "alice"}, Settings{Theme: "humor", MaxWords: 50})
	require.NoError(t, err)
	_, err = m.JoinStory(ctx, s.ID, Participant{UID: "bob"}, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := m.SubmitWord(ctx, s.ID, "alice", "a"); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted, "alice holds exactly one turn")
	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Words, 1)
	assert.Equal(t, "bob", got.CurrentTurnUID)
}
