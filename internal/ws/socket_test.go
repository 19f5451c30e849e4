package ws

import (
	"context"
	"sync"
	"testing"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danielrabaneda/Salas/internal/game"
)

type emitted struct {
	event string
	args  []any
}

// fakeConn implements the parts of socketio.Conn the server touches.
type fakeConn struct {
	socketio.Conn
	id    string
	ctx   any
	mu    sync.Mutex
	out   []emitted
	rooms map[string]bool
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id, rooms: map[string]bool{}} }

func (c *fakeConn) ID() string        { return c.id }
func (c *fakeConn) Context() any      { return c.ctx }
func (c *fakeConn) SetContext(v any)  { c.ctx = v }
func (c *fakeConn) Join(room string)  { c.rooms[room] = true }
func (c *fakeConn) Leave(room string) { delete(c.rooms, room) }

func (c *fakeConn) Emit(ev string, v ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, emitted{ev, v})
}

func (c *fakeConn) last(event string) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.out) - 1; i >= 0; i-- {
		if c.out[i].event == event && len(c.out[i].args) > 0 {
			m, ok := c.out[i].args[0].(map[string]any)
			return m, ok
		}
	}
	return nil, false
}

func newTestServer(t *testing.T) (*Server, *game.StoryManager) {
	t.Helper()
	srv := New(nil, zerolog.Nop())
	m := game.NewStoryManager(game.Options{Notifier: srv, Logger: zerolog.Nop()})
	srv.SetStories(m)
	t.Cleanup(m.Shutdown)
	return srv, m
}

func TestStatePushedPerMember(t *testing.T) {
	srv, m := newTestServer(t)
	ctx := context.Background()

	story, err := m.CreateStory(ctx, game.Participant{UID: "alice"}, game.Settings{Theme: "terror", IsPrivate: true})
	require.NoError(t, err)
	_, err = m.JoinStory(ctx, story.ID, game.Participant{UID: "bob"}, story.InviteCode)
	require.NoError(t, err)

	alice, bob := newFakeConn("s1"), newFakeConn("s2")
	alice.SetContext(&ConnCtx{})
	bob.SetContext(&ConnCtx{})
	srv.attach(alice, story.ID, "alice")
	srv.attach(bob, story.ID, "bob")
	assert.True(t, alice.rooms[story.ID])

	srv.emitStateTo(story.ID)

	a, ok := alice.last("story:state")
	require.True(t, ok)
	assert.Equal(t, true, a["you"].(map[string]any)["yourTurn"])
	assert.NotEmpty(t, a["story"].(game.Story).InviteCode, "the creator sees the invite code")

	b, ok := bob.last("story:state")
	require.True(t, ok)
	assert.Equal(t, false, b["you"].(map[string]any)["yourTurn"])
	assert.Empty(t, b["story"].(game.Story).InviteCode)
}

func TestNotifyRelaysEvents(t *testing.T) {
	srv, m := newTestServer(t)
	ctx := context.Background()

	story, err := m.CreateStory(ctx, game.Participant{UID: "alice"}, game.Settings{Theme: "humor", MaxWords: 1, PaceSeconds: 0})
	require.NoError(t, err)
	conn := newFakeConn("s1")
	conn.SetContext(&ConnCtx{})
	srv.attach(conn, story.ID, "alice")

	_, _, err = m.SubmitWord(ctx, story.ID, "alice", "fin")
	require.NoError(t, err)

	n, ok := conn.last("notification")
	require.True(t, ok)
	assert.Equal(t, game.EventStoryComplete, n["type"])
	st, ok := conn.last("story:state")
	require.True(t, ok)
	assert.Equal(t, game.StatusClosed, st["story"].(game.Story).Status)
}

func TestErrorsUseStableCodes(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := newFakeConn("s1")
	out := srv.err(conn, game.ErrNotYourTurn)
	assert.Equal(t, "not_your_turn", out["error"])
	e, ok := conn.last("error")
	require.True(t, ok)
	assert.Equal(t, "not_your_turn", e["code"])
}

func TestMembersMoveBetweenStories(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := newFakeConn("s1")
	conn.SetContext(&ConnCtx{})

	srv.attach(conn, "one", "alice")
	srv.attach(conn, "two", "alice")
	assert.Empty(t, srv.conns("one"))
	assert.Len(t, srv.conns("two"), 1)
	assert.False(t, conn.rooms["one"])

	srv.removeMember("two", conn)
	assert.Empty(t, srv.conns("two"))
}
