package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog"

	"github.com/Danielrabaneda/Salas/internal/api"
	"github.com/Danielrabaneda/Salas/internal/game"
)

type ConnCtx struct {
	StoryID string
	UID     string
}

// Server is the realtime session layer: it routes socket events to the story
// manager and pushes state and notifications to each story's room.
type Server struct {
	stories *game.StoryManager
	logger  zerolog.Logger

	mu      sync.Mutex
	members map[string]map[string]socketio.Conn // storyID -> socketID -> Conn
	io      *socketio.Server
}

var _ game.Notifier = (*Server)(nil)

func New(stories *game.StoryManager, logger zerolog.Logger) *Server {
	return &Server{
		stories: stories,
		logger:  logger.With().Str("component", "ws").Logger(),
		members: make(map[string]map[string]socketio.Conn),
	}
}

// SetStories attaches the manager once it exists; the manager in turn
// notifies this server.
func (srv *Server) SetStories(m *game.StoryManager) { srv.stories = m }

type identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

func (id identity) participant() game.Participant {
	return game.Participant{UID: id.UID, DisplayName: id.DisplayName, Avatar: id.Avatar}
}

// Mount attaches Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.io = io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		srv.logger.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// story:create
	io.OnEvent("/", "story:create", func(s socketio.Conn, payload struct {
		identity
		Theme       string `json:"theme"`
		Language    string `json:"language"`
		MaxWords    int    `json:"maxWords"`
		IsPrivate   bool   `json:"isPrivate"`
		PaceSeconds *int   `json:"paceSeconds"`
	}) map[string]any {
		pace := game.DefaultPace
		if payload.PaceSeconds != nil {
			pace = *payload.PaceSeconds
		}
		story, err := srv.stories.CreateStory(context.Background(), payload.participant(), game.Settings{
			Language:    payload.Language,
			Theme:       payload.Theme,
			MaxWords:    payload.MaxWords,
			IsPrivate:   payload.IsPrivate,
			PaceSeconds: pace,
		})
		if err != nil {
			return srv.err(s, err)
		}
		srv.attach(s, story.ID, payload.UID)
		srv.logger.Info().Str("sid", s.ID()).Str("storyId", story.ID).Msg("story:create")
		srv.emitStateTo(story.ID)
		return map[string]any{"storyId": story.ID, "inviteCode": story.InviteCode}
	})

	// story:join
	io.OnEvent("/", "story:join", func(s socketio.Conn, payload struct {
		identity
		StoryID    string `json:"storyId"`
		InviteCode string `json:"inviteCode"`
	}) map[string]any {
		story, err := srv.stories.JoinStory(context.Background(), payload.StoryID, payload.participant(), payload.InviteCode)
		if err != nil {
			return srv.err(s, err)
		}
		srv.attach(s, story.ID, payload.UID)
		srv.logger.Info().Str("sid", s.ID()).Str("storyId", story.ID).Str("uid", payload.UID).Msg("story:join")
		srv.emitStateTo(story.ID)
		return map[string]any{"ok": true}
	})

	// story:resume (reconnection)
	io.OnEvent("/", "story:resume", func(s socketio.Conn, payload struct {
		StoryID string `json:"storyId"`
		UID     string `json:"uid"`
	}) map[string]any {
		story, err := srv.stories.Get(payload.StoryID)
		if err != nil {
			return srv.err(s, err)
		}
		if !isParticipant(story, payload.UID) {
			return srv.err(s, game.ErrNotParticipant)
		}
		srv.attach(s, story.ID, payload.UID)
		srv.logger.Info().Str("sid", s.ID()).Str("storyId", story.ID).Str("uid", payload.UID).Msg("story:resume")
		s.Emit("story:state", statePayload(story, payload.UID))
		return map[string]any{"ok": true}
	})

	// story:submit and practice:submit share the same path
	submit := func(s socketio.Conn, payload struct {
		Word string `json:"word"`
	}) map[string]any {
		ctx := connCtx(s)
		w, _, err := srv.stories.SubmitWord(context.Background(), ctx.StoryID, ctx.UID, payload.Word)
		if err != nil {
			return srv.err(s, err)
		}
		srv.emitStateTo(ctx.StoryID)
		return map[string]any{"ok": true, "index": w.Index, "word": w.Word}
	}
	io.OnEvent("/", "story:submit", submit)
	io.OnEvent("/", "practice:submit", submit)

	// story:close (creator) and practice:abandon
	closeStory := func(s socketio.Conn) map[string]any {
		ctx := connCtx(s)
		story, err := srv.stories.ForceClose(context.Background(), ctx.StoryID, ctx.UID)
		if err != nil {
			return srv.err(s, err)
		}
		srv.logger.Info().Str("storyId", ctx.StoryID).Str("title", story.Title).Msg("story closed by creator")
		srv.emitStateTo(ctx.StoryID)
		return map[string]any{"ok": true, "title": story.Title}
	}
	io.OnEvent("/", "story:close", closeStory)
	io.OnEvent("/", "practice:abandon", closeStory)

	// practice:start
	io.OnEvent("/", "practice:start", func(s socketio.Conn, payload struct {
		identity
		Theme      string `json:"theme"`
		Difficulty string `json:"difficulty"`
		MaxLength  int    `json:"maxLength"`
	}) map[string]any {
		difficulty, err := game.ParseDifficulty(payload.Difficulty)
		if err != nil {
			return srv.err(s, game.ErrInvalidSettings)
		}
		story, err := srv.stories.StartPractice(context.Background(), payload.participant(), game.PracticeConfig{
			Theme:      payload.Theme,
			Difficulty: difficulty,
			MaxLength:  payload.MaxLength,
		})
		if err != nil {
			return srv.err(s, err)
		}
		srv.attach(s, story.ID, payload.UID)
		srv.emitStateTo(story.ID)
		return map[string]any{"storyId": story.ID}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		if s == nil {
			srv.logger.Error().Err(e).Msg("socket error")
			return
		}
		srv.logger.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx.StoryID != "" {
			srv.removeMember(ctx.StoryID, s)
		}
		srv.logger.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go func() {
		if err := io.Serve(); err != nil {
			srv.logger.Error().Err(err).Msg("socket server stopped")
		}
	}()

	// Mount to router
	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// Notify relays engine events to the story's room. Clients also get a fresh
// state push.
func (srv *Server) Notify(_ context.Context, ev game.Event) {
	for _, c := range srv.conns(ev.StoryID) {
		c.Emit("notification", map[string]any{"type": ev.Type, "storyId": ev.StoryID, "payload": ev.Payload})
	}
	if ev.Type == game.EventTurn || ev.Type == game.EventStoryComplete {
		srv.emitStateTo(ev.StoryID)
	}
}

func (srv *Server) attach(s socketio.Conn, storyID, uid string) {
	if prev, ok := s.Context().(*ConnCtx); ok && prev.StoryID != "" && prev.StoryID != storyID {
		srv.removeMember(prev.StoryID, s)
		s.Leave(prev.StoryID)
	}
	s.SetContext(&ConnCtx{StoryID: storyID, UID: uid})
	s.Join(storyID)
	srv.addMember(storyID, s)
}

func (srv *Server) addMember(storyID string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.members[storyID] == nil {
		srv.members[storyID] = make(map[string]socketio.Conn)
	}
	srv.members[storyID][c.ID()] = c
}

func (srv *Server) removeMember(storyID string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if m := srv.members[storyID]; m != nil {
		delete(m, c.ID())
		if len(m) == 0 {
			delete(srv.members, storyID)
		}
	}
}

func (srv *Server) conns(storyID string) []socketio.Conn {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	out := make([]socketio.Conn, 0, len(srv.members[storyID]))
	for _, c := range srv.members[storyID] {
		out = append(out, c)
	}
	return out
}

func (srv *Server) emitStateTo(storyID string) {
	story, err := srv.stories.Get(storyID)
	if err != nil {
		return
	}
	for _, c := range srv.conns(storyID) {
		c.Emit("story:state", statePayload(story, connCtx(c).UID))
	}
}

func (srv *Server) err(s socketio.Conn, err error) map[string]any {
	_, code := api.ErrorCode(err)
	s.Emit("error", map[string]any{"code": code, "message": err.Error()})
	return map[string]any{"error": code}
}

func statePayload(story game.Story, uid string) map[string]any {
	if uid != story.CreatorUID {
		story.InviteCode = ""
	}
	return map[string]any{
		"story": story,
		"you": map[string]any{
			"uid":      uid,
			"yourTurn": story.CurrentTurnUID == uid,
			"creator":  story.CreatorUID == uid,
		},
	}
}

func connCtx(s socketio.Conn) *ConnCtx {
	if ctx, ok := s.Context().(*ConnCtx); ok {
		return ctx
	}
	return &ConnCtx{}
}

func isParticipant(s game.Story, uid string) bool {
	for _, p := range s.Participants {
		if p.UID == uid {
			return true
		}
	}
	return false
}
