package game

import "errors"

var (
	ErrStoryNotFound   = errors.New("story not found")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrStoryClosed     = errors.New("story closed")
	ErrEmptyWord       = errors.New("empty word")
	ErrNotCreator      = errors.New("only the creator can close the story")
	ErrInvalidInvite   = errors.New("invalid invite code")
	ErrInvalidSettings = errors.New("invalid story settings")
	ErrNotParticipant  = errors.New("not a participant")
)
