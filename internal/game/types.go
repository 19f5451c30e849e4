package game

import (
	"time"
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
	// StatusVoting is reserved for the ranking flow and never set by the engine.
	StatusVoting Status = "voting"
)

const (
	MaxWordLength     = 20
	CriticalThreshold = 3
	AIParticipantUID  = "ai-bot"
	PlaceholderTitle  = "NUEVA AVENTURA"
	FallbackWord      = "inesperadamente"
	EmptyReplyWord    = "entonces"
	ContextWindow     = 15
	DefaultPace       = 10
	DefaultMaxWords   = 50
	DefaultPracticeLn = 30
	DefaultLanguage   = "es"
)

type Settings struct {
	Language    string `json:"language"`
	Theme       string `json:"theme"`
	MaxWords    int    `json:"maxWords"`
	IsPrivate   bool   `json:"isPrivate"`
	PaceSeconds int    `json:"paceSeconds"` // 0 disables the turn clock
	AllowNSFW   bool   `json:"allowNSFW"`
}

type StoryWord struct {
	Word      string    `json:"word"`
	UID       string    `json:"uid"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
}

type Forfeit struct {
	UID       string    `json:"uid"`
	TurnIndex int       `json:"turnIndex"`
	At        time.Time `json:"at"`
}

type Story struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title,omitempty"`
	CreatorUID           string         `json:"creatorUid"`
	Status               Status         `json:"status"`
	Words                []StoryWord    `json:"words"`
	Participants         []Participant  `json:"participants"`
	ParticipantWordCount map[string]int `json:"participantWordCount"`
	Forfeits             []Forfeit      `json:"forfeits"`
	InviteCode           string         `json:"inviteCode,omitempty"`
	IsPractice           bool           `json:"isPractice"`
	Settings             Settings       `json:"settings"`

	// Projections of the roster and clock, rewritten on every transition.
	CurrentTurnUID string    `json:"currentTurnUid"`
	TurnEndsAt     time.Time `json:"turnEndsAt"`
	TimeLeft       int       `json:"timeLeft"`
	Critical       bool      `json:"critical"`

	LastActivityAt time.Time `json:"lastActivityAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Text is the canonical story text: words space-joined in index order.
func (s Story) Text() string {
	return joinWords(s.Words)
}

func (s Story) clone() Story {
	out := s
	out.Words = append([]StoryWord(nil), s.Words...)
	out.Participants = append([]Participant(nil), s.Participants...)
	out.Forfeits = append([]Forfeit(nil), s.Forfeits...)
	out.ParticipantWordCount = make(map[string]int, len(s.ParticipantWordCount))
	for k, v := range s.ParticipantWordCount {
		out.ParticipantWordCount[k] = v
	}
	return out
}

type EventType string

const (
	EventTurn          EventType = "turn"
	EventStoryComplete EventType = "story_complete"
)

type Event struct {
	Type    EventType      `json:"type"`
	StoryID string         `json:"storyId"`
	Payload map[string]any `json:"payload"`
	Story   *Story         `json:"story,omitempty"`
}

type PracticeConfig struct {
	Theme      string     `json:"theme"`
	Difficulty Difficulty `json:"difficulty"`
	MaxLength  int        `json:"maxLength"`
}
