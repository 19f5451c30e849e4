package game

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	closeTriggerMaxWords = "max_words"
	closeTriggerCreator  = "creator"
)

// Engine is the state machine of a single story. It is not safe for concurrent
// use: a coordinator (Table or Practice) serializes every call.
type Engine struct {
	story  Story
	roster *Roster
	clock  *TurnClock
	closer *Closer
	now    func() time.Time

	frozenLen int
	outbox    []Event
}

func NewEngine(story Story, closer *Closer, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	if closer == nil {
		closer = &Closer{Logger: zerolog.Nop()}
	}
	if story.Status == "" {
		story.Status = StatusActive
	}
	if story.ParticipantWordCount == nil {
		story.ParticipantWordCount = make(map[string]int)
	}
	e := &Engine{
		story:  story,
		roster: NewRoster(story.Participants...),
		clock:  NewTurnClock(story.Settings.PaceSeconds),
		closer: closer,
		now:    now,
	}
	e.story.Participants = e.roster.Members()
	e.syncTurnView()
	e.checkInvariants()
	return e
}

func (e *Engine) ID() string { return e.story.ID }

func (e *Engine) Closed() bool { return e.story.Status == StatusClosed }

func (e *Engine) WordCount() int { return len(e.story.Words) }

func (e *Engine) Snapshot() Story { return e.story.clone() }

// Drain hands over the events produced since the last call.
func (e *Engine) Drain() []Event {
	out := e.outbox
	e.outbox = nil
	return out
}

// LastWords returns up to n of the most recent words, oldest first.
func (e *Engine) LastWords(n int) []string {
	words := e.story.Words
	if len(words) > n {
		words = words[len(words)-n:]
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, w.Word)
	}
	return out
}

func (e *Engine) SubmitWord(ctx context.Context, uid, raw string) (StoryWord, error) {
	if e.Closed() {
		submissionsRejected.WithLabelValues("story_closed").Inc()
		return StoryWord{}, ErrStoryClosed
	}
	if !e.roster.IsTurnOf(uid) {
		submissionsRejected.WithLabelValues("not_your_turn").Inc()
		return StoryWord{}, ErrNotYourTurn
	}
	word := firstToken(raw)
	if word == "" {
		submissionsRejected.WithLabelValues("empty_word").Inc()
		return StoryWord{}, ErrEmptyWord
	}

	ts := e.now()
	if n := len(e.story.Words); n > 0 && ts.Before(e.story.Words[n-1].Timestamp) {
		ts = e.story.Words[n-1].Timestamp
	}
	w := StoryWord{Word: word, UID: uid, Index: len(e.story.Words), Timestamp: ts}
	e.story.Words = append(e.story.Words, w)
	e.story.ParticipantWordCount[uid]++
	if ts.After(e.story.LastActivityAt) {
		e.story.LastActivityAt = ts
	}
	wordsAccepted.WithLabelValues(wordSource(uid)).Inc()

	advanced := false
	if e.roster.Size() > 1 {
		e.roster.Advance()
		advanced = true
	}
	e.clock.Reset(e.story.Settings.PaceSeconds)

	if len(e.story.Words) >= e.story.Settings.MaxWords {
		e.close(ctx, closeTriggerMaxWords)
	} else {
		e.syncTurnView()
		if advanced {
			e.emitTurn()
		}
	}
	e.checkInvariants()
	return w, nil
}

func (e *Engine) ForceClose(ctx context.Context, uid string) error {
	if e.Closed() {
		return ErrStoryClosed
	}
	if uid != e.story.CreatorUID {
		return ErrNotCreator
	}
	e.close(ctx, closeTriggerCreator)
	e.checkInvariants()
	return nil
}

// OnTimerExpired forfeits the current turn: nothing is appended, the roster
// moves on and the clock restarts.
func (e *Engine) OnTimerExpired(ctx context.Context) (Forfeit, bool) {
	if e.Closed() || e.roster.Size() <= 1 {
		return Forfeit{}, false
	}
	f := Forfeit{UID: e.roster.Current().UID, TurnIndex: e.roster.TurnIndex(), At: e.now()}
	e.story.Forfeits = append(e.story.Forfeits, f)
	forfeits.Inc()

	e.roster.Advance()
	e.clock.Reset(e.story.Settings.PaceSeconds)
	e.syncTurnView()
	e.emitTurn()
	e.checkInvariants()
	return f, true
}

// Tick advances the turn clock by one unit and forfeits the turn on expiry.
func (e *Engine) Tick(ctx context.Context) *Forfeit {
	if !e.timed() {
		return nil
	}
	if e.clock.Tick() {
		if f, ok := e.OnTimerExpired(ctx); ok {
			return &f
		}
	}
	e.syncTurnView()
	return nil
}

func (e *Engine) Join(p Participant) error {
	if e.Closed() {
		return ErrStoryClosed
	}
	before := e.roster.Size()
	if !e.roster.Append(p) {
		return nil
	}
	e.story.Participants = e.roster.Members()
	if before == 1 {
		// first timed turn starts now
		e.clock.Reset(e.story.Settings.PaceSeconds)
	}
	e.syncTurnView()
	e.checkInvariants()
	return nil
}

func (e *Engine) timed() bool {
	return !e.Closed() && e.clock.Enabled() && e.roster.Size() > 1
}

func (e *Engine) close(ctx context.Context, trigger string) {
	ev := e.closer.Close(ctx, &e.story, trigger)
	e.clock.Reset(0)
	e.frozenLen = len(e.story.Words)
	storiesClosed.WithLabelValues(trigger).Inc()
	e.outbox = append(e.outbox, ev)
}

func (e *Engine) syncTurnView() {
	if e.Closed() {
		e.story.CurrentTurnUID = ""
		e.story.TurnEndsAt = time.Time{}
		e.story.TimeLeft = 0
		e.story.Critical = false
		return
	}
	e.story.CurrentTurnUID = e.roster.Current().UID
	if e.timed() {
		remaining := e.clock.Remaining()
		e.story.TimeLeft = remaining
		e.story.Critical = e.clock.Critical()
		e.story.TurnEndsAt = e.now().Add(time.Duration(remaining) * time.Second)
		return
	}
	e.story.TimeLeft = 0
	e.story.Critical = false
	e.story.TurnEndsAt = time.Time{}
}

func (e *Engine) emitTurn() {
	cur := e.roster.Current()
	e.outbox = append(e.outbox, Event{
		Type:    EventTurn,
		StoryID: e.story.ID,
		Payload: map[string]any{
			"uid":         cur.UID,
			"displayName": cur.DisplayName,
			"turnEndsAt":  e.story.TurnEndsAt,
			"theme":       e.story.Settings.Theme,
		},
	})
}

func (e *Engine) checkInvariants() {
	for i, w := range e.story.Words {
		if w.Index != i {
			panic(fmt.Sprintf("game: story %s word %d carries index %d", e.story.ID, i, w.Index))
		}
	}
	if n := e.roster.Size(); n > 0 && (e.roster.TurnIndex() < 0 || e.roster.TurnIndex() >= n) {
		panic(fmt.Sprintf("game: story %s turn index %d out of range %d", e.story.ID, e.roster.TurnIndex(), n))
	}
	if len(e.story.Words) > e.story.Settings.MaxWords {
		panic(fmt.Sprintf("game: story %s has %d words, max %d", e.story.ID, len(e.story.Words), e.story.Settings.MaxWords))
	}
	if e.Closed() && len(e.story.Words) != e.frozenLen {
		panic(fmt.Sprintf("game: closed story %s was mutated", e.story.ID))
	}
}

func wordSource(uid string) string {
	if uid == AIParticipantUID {
		return "ai"
	}
	return "human"
}

// firstToken keeps the first whitespace-delimited token, capped at MaxWordLength runes.
func firstToken(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	w := fields[0]
	if utf8.RuneCountInString(w) > MaxWordLength {
		w = string([]rune(w)[:MaxWordLength])
	}
	return w
}

// NormalizeGeneratedWord sanitizes generator output: first token, punctuation
// stripped, lower-cased.
func NormalizeGeneratedWord(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	w := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, fields[0])
	return firstToken(strings.ToLower(w))
}

func joinWords(words []StoryWord) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Word
	}
	return strings.Join(parts, " ")
}
