package game

import (
	"context"
	"sync"
	"time"
)

type stubTitles struct {
	mu    sync.Mutex
	title string
	err   error
	texts []string
}

func (s *stubTitles) TitleFor(_ context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return s.title, s.err
}

// stuckTitles never answers and ignores its context.
type stuckTitles struct{ release chan struct{} }

func (s stuckTitles) TitleFor(context.Context, string) (string, error) {
	<-s.release
	return "TOO LATE", nil
}

type scriptedWords struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	seen    [][]string
	entered chan struct{}
	release chan struct{}
}

func (s *scriptedWords) NextWord(_ context.Context, contextWords []string, _ string, _ Difficulty) (string, error) {
	s.mu.Lock()
	s.calls++
	s.seen = append(s.seen, append([]string(nil), contextWords...))
	var reply string
	if len(s.replies) > 0 {
		reply = s.replies[0]
		s.replies = s.replies[1:]
	}
	err := s.err
	entered, release := s.entered, s.release
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return reply, err
}

func (s *scriptedWords) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recorder struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func newRecorder() *recorder { return &recorder{ch: make(chan Event, 64)} }

func (r *recorder) Notify(_ context.Context, ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.ch <- ev
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// next waits for the next event of type t.
func (r *recorder) next(t EventType, timeout time.Duration) (Event, bool) {
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-r.ch:
			if ev.Type == t {
				return ev, true
			}
		case <-deadline:
			return Event{}, false
		}
	}
}

type manualTickers struct {
	ch       chan time.Time
	stopOnce sync.Once
	stopped  chan struct{}
}

func newManualTickers() *manualTickers {
	return &manualTickers{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *manualTickers) Create(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() { m.stopOnce.Do(func() { close(m.stopped) }) }
}

func (m *manualTickers) tick() { m.ch <- time.Now() }

func participants(uids ...string) []Participant {
	out := make([]Participant, len(uids))
	for i, uid := range uids {
		out[i] = Participant{UID: uid, DisplayName: uid}
	}
	return out
}

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func steppingClock() func() time.Time {
	var mu sync.Mutex
	now := epoch
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newTestEngine(pace, maxWords int, uids ...string) *Engine {
	return NewEngine(Story{
		ID:           "story-1",
		CreatorUID:   uids[0],
		Participants: participants(uids...),
		Settings:     Settings{Theme: "terror", MaxWords: maxWords, PaceSeconds: pace},
	}, nil, steppingClock())
}
