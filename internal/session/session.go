// Package session keeps per-user progress (coins, practice record, counters)
// behind a small repository interface.
package session

import (
	"context"
	"time"
)

const PracticeReward = 3

type PracticeStats struct {
	TotalGames int `json:"totalPartidas"`
	BestStreak int `json:"mejorRacha"`
}

type Stats struct {
	StoriesCreated      int `json:"storiesCreated"`
	StoriesParticipated int `json:"storiesParticipated"`
	TotalWords          int `json:"totalWords"`
}

type Session struct {
	UID          string        `json:"uid"`
	DisplayName  string        `json:"displayName"`
	Coins        int           `json:"coins"`
	Practice     PracticeStats `json:"practiceStats"`
	Stats        Stats         `json:"stats"`
	LastActiveAt time.Time     `json:"lastActiveAt"`
}

// Repository loads and stores sessions. Load returns (nil, nil) for an unknown uid.
// Update is atomic per uid: it loads the session (creating it when absent),
// applies fn, stamps LastActiveAt and saves it without losing concurrent updates.
type Repository interface {
	Load(ctx context.Context, uid string) (*Session, error)
	Save(ctx context.Context, s Session) error
	Update(ctx context.Context, uid string, fn func(*Session)) (Session, error)
	Clear(ctx context.Context, uid string) error
}

// ApplyPracticeResult rewards a finished practice game. The best streak is half
// the story length regardless of who wrote the last word.
func ApplyPracticeResult(s *Session, wordCount int) {
	s.Coins += PracticeReward
	s.Practice.TotalGames++
	if streak := wordCount / 2; streak > s.Practice.BestStreak {
		s.Practice.BestStreak = streak
	}
}

func apply(s *Session, uid string, fn func(*Session)) {
	if s.UID == "" {
		s.UID = uid
	}
	fn(s)
	s.LastActiveAt = time.Now().UTC()
}
