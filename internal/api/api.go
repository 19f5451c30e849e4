// Package api exposes the story manager over JSON HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Danielrabaneda/Salas/internal/game"
	"github.com/Danielrabaneda/Salas/internal/session"
)

type Handler struct {
	stories  *game.StoryManager
	sessions session.Repository
	logger   zerolog.Logger
}

func New(stories *game.StoryManager, sessions session.Repository, logger zerolog.Logger) *Handler {
	return &Handler{stories: stories, sessions: sessions, logger: logger.With().Str("component", "api").Logger()}
}

func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api")
	g.POST("/stories", h.createStory)
	g.GET("/stories", h.listStories)
	g.GET("/stories/:id", h.getStory)
	g.POST("/stories/:id/join", h.joinStory)
	g.POST("/stories/:id/words", h.submitWord)
	g.POST("/stories/:id/close", h.closeStory)

	g.POST("/practice", h.startPractice)
	g.POST("/practice/:id/words", h.submitWord)
	g.POST("/practice/:id/abandon", h.abandonPractice)

	g.GET("/sessions/:uid", h.getSession)
}

type participantReq struct {
	UID         string `json:"uid" binding:"required"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

func (p participantReq) participant() game.Participant {
	return game.Participant{UID: p.UID, DisplayName: p.DisplayName, Avatar: p.Avatar}
}

type createStoryReq struct {
	participantReq
	Theme       string `json:"theme"`
	Language    string `json:"language"`
	MaxWords    int    `json:"maxWords"`
	IsPrivate   bool   `json:"isPrivate"`
	PaceSeconds *int   `json:"paceSeconds"`
	AllowNSFW   bool   `json:"allowNSFW"`
}

func (h *Handler) createStory(c *gin.Context) {
	var req createStoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	pace := game.DefaultPace
	if req.PaceSeconds != nil {
		pace = *req.PaceSeconds
	}
	s, err := h.stories.CreateStory(c.Request.Context(), req.participant(), game.Settings{
		Language:    req.Language,
		Theme:       req.Theme,
		MaxWords:    req.MaxWords,
		IsPrivate:   req.IsPrivate,
		PaceSeconds: pace,
		AllowNSFW:   req.AllowNSFW,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) listStories(c *gin.Context) {
	status := c.Query("status")
	out := []game.Story{}
	for _, s := range h.stories.List() {
		if status != "" && string(s.Status) != status {
			continue
		}
		out = append(out, redact(s, ""))
	}
	c.JSON(http.StatusOK, gin.H{"stories": out})
}

func (h *Handler) getStory(c *gin.Context) {
	s, err := h.stories.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, redact(s, c.Query("uid")))
}

type joinReq struct {
	participantReq
	InviteCode string `json:"inviteCode"`
}

func (h *Handler) joinStory(c *gin.Context) {
	var req joinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.stories.JoinStory(c.Request.Context(), c.Param("id"), req.participant(), req.InviteCode)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, redact(s, req.UID))
}

type wordReq struct {
	UID  string `json:"uid" binding:"required"`
	Word string `json:"word"`
}

func (h *Handler) submitWord(c *gin.Context) {
	var req wordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, s, err := h.stories.SubmitWord(c.Request.Context(), c.Param("id"), req.UID, req.Word)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"word": w, "story": redact(s, req.UID)})
}

type uidReq struct {
	UID string `json:"uid" binding:"required"`
}

func (h *Handler) closeStory(c *gin.Context) {
	var req uidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.stories.ForceClose(c.Request.Context(), c.Param("id"), req.UID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

type practiceReq struct {
	participantReq
	Theme      string          `json:"theme"`
	Difficulty game.Difficulty `json:"difficulty"`
	MaxLength  int             `json:"maxLength"`
}

func (h *Handler) startPractice(c *gin.Context) {
	var req practiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.stories.StartPractice(c.Request.Context(), req.participant(), game.PracticeConfig{
		Theme:      req.Theme,
		Difficulty: req.Difficulty,
		MaxLength:  req.MaxLength,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) abandonPractice(c *gin.Context) {
	var req uidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.stories.Abandon(c.Request.Context(), c.Param("id"), req.UID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) getSession(c *gin.Context) {
	if h.sessions == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
		return
	}
	s, err := h.sessions.Load(c.Request.Context(), c.Param("uid"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// redact hides the invite code from everyone but the creator.
func redact(s game.Story, uid string) game.Story {
	if uid != s.CreatorUID {
		s.InviteCode = ""
	}
	return s
}

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{game.ErrStoryNotFound, http.StatusNotFound, "story_not_found"},
	{game.ErrNotYourTurn, http.StatusConflict, "not_your_turn"},
	{game.ErrStoryClosed, http.StatusConflict, "story_closed"},
	{game.ErrEmptyWord, http.StatusBadRequest, "empty_word"},
	{game.ErrNotCreator, http.StatusForbidden, "not_creator"},
	{game.ErrInvalidInvite, http.StatusForbidden, "invalid_invite"},
	{game.ErrNotParticipant, http.StatusForbidden, "not_participant"},
	{game.ErrInvalidSettings, http.StatusBadRequest, "invalid_settings"},
}

// ErrorCode maps a game error to its HTTP status and stable code.
func ErrorCode(err error) (int, string) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.status, ec.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code := ErrorCode(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
}
