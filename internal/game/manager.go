package game

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Danielrabaneda/Salas/internal/session"
)

const (
	inviteCodeLength     = 6
	DefaultPracticeTheme = "terror"

	DefaultWordTimeout  = 8 * time.Second
	DefaultTitleTimeout = 10 * time.Second
)

type coordinator interface {
	SubmitWord(ctx context.Context, uid, word string) (StoryWord, Story, error)
	ForceClose(ctx context.Context, uid string) (Story, error)
	Snapshot() Story
	halt()
}

type Options struct {
	Words    WordGenerator
	Titles   TitleGenerator
	Notifier Notifier
	Sessions session.Repository
	Tickers  TickerGen

	// TickInterval is one unit of the turn clock. Defaults to one second.
	TickInterval time.Duration
	// Generator waits are always bounded; zero selects the defaults.
	WordTimeout  time.Duration
	TitleTimeout time.Duration

	Logger zerolog.Logger
	Now    func() time.Time
}

// StoryManager owns every live story and routes commands to its coordinator.
type StoryManager struct {
	mu      sync.RWMutex
	stories map[string]coordinator
	opts    Options
	closer  *Closer
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewStoryManager(opts Options) *StoryManager {
	if opts.Tickers == nil {
		opts.Tickers = NewTickerGen()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.WordTimeout <= 0 {
		opts.WordTimeout = DefaultWordTimeout
	}
	if opts.TitleTimeout <= 0 {
		opts.TitleTimeout = DefaultTitleTimeout
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &StoryManager{
		stories: make(map[string]coordinator),
		opts:    opts,
		closer: &Closer{
			Titles:  opts.Titles,
			Timeout: opts.TitleTimeout,
			Logger:  opts.Logger.With().Str("component", "closer").Logger(),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// CreateStory seats the creator first and, for a timed story, starts the clock driver.
func (m *StoryManager) CreateStory(ctx context.Context, creator Participant, settings Settings) (Story, error) {
	if strings.TrimSpace(creator.UID) == "" || creator.UID == AIParticipantUID {
		return Story{}, ErrInvalidSettings
	}
	settings.Theme = strings.TrimSpace(settings.Theme)
	if settings.Theme == "" || settings.MaxWords < 0 || settings.PaceSeconds < 0 {
		return Story{}, ErrInvalidSettings
	}
	if settings.MaxWords == 0 {
		settings.MaxWords = DefaultMaxWords
	}
	if settings.Language == "" {
		settings.Language = DefaultLanguage
	}
	creator = seat(creator)

	now := m.opts.Now()
	story := Story{
		ID:             uuid.NewString(),
		CreatorUID:     creator.UID,
		Status:         StatusActive,
		Participants:   []Participant{creator},
		Settings:       settings,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if settings.IsPrivate {
		story.InviteCode = randomCode(inviteCodeLength)
	}

	table := newTable(m.ctx, NewEngine(story, m.closer, m.opts.Now), NotifierFunc(m.dispatch), m.opts.Logger)
	if settings.PaceSeconds > 0 {
		ticks, stop := m.opts.Tickers.Create(m.opts.TickInterval)
		go table.run(ticks, stop)
	}

	m.mu.Lock()
	m.stories[story.ID] = table
	m.mu.Unlock()
	activeStories.Inc()

	m.touch(ctx, creator, func(s *session.Session) { s.Stats.StoriesCreated++ })
	m.opts.Logger.Info().Str("storyId", story.ID).Str("creator", creator.UID).Str("theme", settings.Theme).
		Int("maxWords", settings.MaxWords).Int("pace", settings.PaceSeconds).Bool("private", settings.IsPrivate).
		Msg("story created")
	return table.Snapshot(), nil
}

// JoinStory appends p to the roster. Private stories require their invite code.
func (m *StoryManager) JoinStory(ctx context.Context, storyID string, p Participant, inviteCode string) (Story, error) {
	if strings.TrimSpace(p.UID) == "" || p.UID == AIParticipantUID {
		return Story{}, ErrNotParticipant
	}
	c, err := m.get(storyID)
	if err != nil {
		return Story{}, err
	}
	table, ok := c.(*Table)
	if !ok {
		return Story{}, ErrInvalidInvite
	}
	snap := table.Snapshot()
	if snap.Settings.IsPrivate && !strings.EqualFold(strings.TrimSpace(inviteCode), snap.InviteCode) {
		return Story{}, ErrInvalidInvite
	}
	p = seat(p)
	story, added, err := table.Join(p)
	if err != nil {
		return story, err
	}
	if added {
		m.touch(ctx, p, func(s *session.Session) { s.Stats.StoriesParticipated++ })
		m.opts.Logger.Info().Str("storyId", storyID).Str("uid", p.UID).Int("participants", len(story.Participants)).Msg("participant joined")
	}
	return story, nil
}

// StartPractice opens a solo story against the word generator. The human moves first.
func (m *StoryManager) StartPractice(ctx context.Context, human Participant, cfg PracticeConfig) (Story, error) {
	if strings.TrimSpace(human.UID) == "" || human.UID == AIParticipantUID || cfg.MaxLength < 0 {
		return Story{}, ErrInvalidSettings
	}
	if cfg.MaxLength == 0 {
		cfg.MaxLength = DefaultPracticeLn
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = DifficultyNormal
	}
	cfg.Theme = strings.TrimSpace(cfg.Theme)
	if cfg.Theme == "" {
		cfg.Theme = DefaultPracticeTheme
	}
	human = seat(human)

	now := m.opts.Now()
	story := Story{
		ID:           "practice-" + uuid.NewString(),
		CreatorUID:   human.UID,
		Status:       StatusActive,
		Participants: []Participant{human, AIParticipant},
		IsPractice:   true,
		Settings: Settings{
			Language:  DefaultLanguage,
			Theme:     cfg.Theme,
			MaxWords:  cfg.MaxLength,
			IsPrivate: true,
		},
		CreatedAt:      now,
		LastActivityAt: now,
	}
	practice := newPractice(NewEngine(story, m.closer, m.opts.Now), human.UID, cfg,
		m.opts.Words, m.opts.WordTimeout, NotifierFunc(m.dispatch), m.opts.Logger)

	m.mu.Lock()
	m.stories[story.ID] = practice
	m.mu.Unlock()
	activeStories.Inc()

	m.opts.Logger.Info().Str("storyId", story.ID).Str("uid", human.UID).Str("theme", cfg.Theme).
		Str("difficulty", string(cfg.Difficulty)).Int("maxLength", cfg.MaxLength).Msg("practice started")
	return practice.Snapshot(), nil
}

func (m *StoryManager) SubmitWord(ctx context.Context, storyID, uid, word string) (StoryWord, Story, error) {
	c, err := m.get(storyID)
	if err != nil {
		return StoryWord{}, Story{}, err
	}
	return c.SubmitWord(ctx, uid, word)
}

func (m *StoryManager) ForceClose(ctx context.Context, storyID, uid string) (Story, error) {
	c, err := m.get(storyID)
	if err != nil {
		return Story{}, err
	}
	return c.ForceClose(ctx, uid)
}

// Abandon ends a story early on behalf of its creator. For practice stories
// this is the human walking away; the closure path is the same.
func (m *StoryManager) Abandon(ctx context.Context, storyID, uid string) (Story, error) {
	return m.ForceClose(ctx, storyID, uid)
}

func (m *StoryManager) Get(storyID string) (Story, error) {
	c, err := m.get(storyID)
	if err != nil {
		return Story{}, err
	}
	return c.Snapshot(), nil
}

// List returns multiplayer stories, newest first.
func (m *StoryManager) List() []Story {
	m.mu.RLock()
	out := make([]Story, 0, len(m.stories))
	for _, c := range m.stories {
		if _, ok := c.(*Table); ok {
			out = append(out, c.Snapshot())
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Practice returns the practice coordinator for storyID, if it is one.
func (m *StoryManager) Practice(storyID string) (*Practice, bool) {
	c, err := m.get(storyID)
	if err != nil {
		return nil, false
	}
	p, ok := c.(*Practice)
	return p, ok
}

// Shutdown stops every clock driver. Stories stay readable.
func (m *StoryManager) Shutdown() {
	m.cancel()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.stories {
		c.halt()
	}
}

func (m *StoryManager) get(storyID string) (coordinator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.stories[storyID]
	if !ok {
		return nil, ErrStoryNotFound
	}
	return c, nil
}

// dispatch sees every event after the coordinator lock is released.
func (m *StoryManager) dispatch(ctx context.Context, ev Event) {
	if ev.Type == EventStoryComplete {
		activeStories.Dec()
		if ev.Story != nil && ev.Story.IsPractice {
			words := len(ev.Story.Words)
			m.touch(ctx, Participant{UID: ev.Story.CreatorUID}, func(s *session.Session) {
				session.ApplyPracticeResult(s, words)
			})
		}
		if ev.Story != nil {
			for uid, n := range ev.Story.ParticipantWordCount {
				if uid == AIParticipantUID {
					continue
				}
				m.touch(ctx, Participant{UID: uid}, func(s *session.Session) { s.Stats.TotalWords += n })
			}
		}
	}
	m.opts.Notifier.Notify(ctx, ev)
}

// touch applies fn to the participant's session. Session failures are logged
// and never fail the story operation.
func (m *StoryManager) touch(ctx context.Context, p Participant, fn func(*session.Session)) {
	if m.opts.Sessions == nil {
		return
	}
	_, err := m.opts.Sessions.Update(ctx, p.UID, func(s *session.Session) {
		if p.DisplayName != "" {
			s.DisplayName = p.DisplayName
		}
		fn(s)
	})
	if err != nil {
		m.opts.Logger.Warn().Err(err).Str("uid", p.UID).Msg("session update failed")
	}
}

func seat(p Participant) Participant {
	p.Online = true
	if p.Reliability == 0 {
		p.Reliability = 3
	}
	if p.DisplayName == "" {
		p.DisplayName = p.UID
	}
	return p
}

func randomCode(n int) string {
	letters := []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
