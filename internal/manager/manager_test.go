package manager

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/DoyleJ11/mafia-client/internal/packet"
	"github.com/DoyleJ11/mafia-client/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeServer hands out fakeConns. reply, when set, answers every packet a
// conn sends.
type fakeServer struct {
	mu      sync.Mutex
	conns   []*fakeConn
	dialErr error
	reply   func(p packet.ToServer) []packet.ToClient
}

func (f *fakeServer) Dial(_ context.Context, h Handler) (Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	c := &fakeConn{h: h, reply: f.reply}
	f.conns = append(f.conns, c)
	h.OnOpen()
	return c, nil
}

func (f *fakeServer) conn(t *testing.T, i int) *fakeConn {
	t.Helper()
	var c *fakeConn
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		if len(f.conns) > i {
			c = f.conns[i]
			return true
		}
		return false
	}, time.Second, time.Millisecond, "conn %d never dialed", i)
	return c
}

type fakeConn struct {
	h     Handler
	reply func(p packet.ToServer) []packet.ToClient

	mu     sync.Mutex
	sent   []packet.ToServer
	closed bool
}

func (c *fakeConn) Send(p packet.ToServer) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("send on closed conn")
	}
	c.sent = append(c.sent, p)
	c.mu.Unlock()

	if c.reply != nil {
		for _, r := range c.reply(p) {
			c.h.OnMessage(r)
		}
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) packets() []packet.ToServer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sent)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// acceptAll answers join, rejoin and host the way a server with room 42 does.
func acceptAll(p packet.ToServer) []packet.ToClient {
	switch p := p.(type) {
	case packet.Join:
		return []packet.ToClient{packet.AcceptJoin{RoomCode: p.RoomCode, PlayerID: 7}}
	case packet.Rejoin:
		return []packet.ToClient{packet.AcceptJoin{RoomCode: p.RoomCode, PlayerID: p.PlayerID}}
	case packet.Host:
		return []packet.ToClient{packet.AcceptHost{RoomCode: 42}, packet.YourID{PlayerID: 1}}
	}
	return nil
}

func newTestManager(t *testing.T, d Dialer, timeout time.Duration) *Manager {
	t.Helper()
	m := New(context.Background(), d, Config{JoinTimeout: timeout}, zap.NewNop())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func settle(t *testing.T, m *Manager) {
	t.Helper()
	require.NoError(t, m.Sync(testCtx(t)))
}

func dispatch(t *testing.T, m *Manager, ps ...packet.ToClient) {
	t.Helper()
	for _, p := range ps {
		m.DispatchInbound(p)
	}
	settle(t, m)
}

// recorder collects the events a listener sees.
type recorder struct {
	mu     sync.Mutex
	events []EventType
}

func (r *recorder) listen(ev EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func (r *recorder) count(ev EventType) int {
	n := 0
	for _, e := range r.all() {
		if e == ev {
			n++
		}
	}
	return n
}

// enterGame puts m into a game with the local player at index 0.
func enterGame(t *testing.T, m *Manager, names ...string) {
	t.Helper()
	dispatch(t, m,
		packet.AcceptJoin{RoomCode: 42, PlayerID: 1, InGame: true},
		packet.GamePlayers{Players: names},
		packet.YourPlayerIndex{PlayerIndex: 0},
	)
}

func TestManagerStartsOutsideLobby(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	assert.Equal(t, state.ConnOutsideLobby, m.State().Connection())
	_, _, ok := m.Credentials()
	assert.False(t, ok)
}

func TestPhasePacketSetsTimerAndNotifies(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	enterGame(t, m, "ada", "bo")

	rec := &recorder{}
	m.Subscribe(rec.listen)
	dispatch(t, m, packet.PhaseTimes{PhaseTimeSettings: state.DefaultGamePhaseTimes().With(state.PhaseVoting, 30)})
	dispatch(t, m, packet.Phase{Phase: state.PhaseVoting, DayNumber: 2})

	g := mustGame(t, m.State())
	assert.Equal(t, 30000*time.Millisecond, g.TimeLeft)
	assert.Equal(t, 2, g.DayNumber)
	assert.Equal(t, []EventType{"phaseTimes", "phase"}, rec.all())
}

func TestConnectRoomFull(t *testing.T) {
	srv := &fakeServer{reply: func(p packet.ToServer) []packet.ToClient {
		return []packet.ToClient{packet.RejectJoin{Reason: packet.RejectRoomFull}}
	}}
	m := newTestManager(t, srv, time.Second)
	rec := &recorder{}
	m.Subscribe(rec.listen)

	err := m.Connect(testCtx(t), 42)
	require.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, state.ConnDisconnected, m.State().Connection())

	c := srv.conn(t, 0)
	assert.Equal(t, []packet.ToServer{packet.Join{RoomCode: 42}}, c.packets())
	assert.True(t, c.isClosed())
	settle(t, m)
	assert.Equal(t, []EventType{"rejectJoin"}, rec.all())
}

func TestConnectAccepted(t *testing.T) {
	srv := &fakeServer{reply: acceptAll}
	m := newTestManager(t, srv, time.Second)

	require.NoError(t, m.Connect(testCtx(t), 42))
	l := mustLobby(t, m.State())
	assert.Equal(t, state.RoomCode(42), l.RoomCode)

	code, id, ok := m.Credentials()
	require.True(t, ok)
	assert.Equal(t, state.RoomCode(42), code)
	assert.Equal(t, state.PlayerID(7), id)
}

func TestRejoinIntoRunningGame(t *testing.T) {
	srv := &fakeServer{reply: func(p packet.ToServer) []packet.ToClient {
		rj := p.(packet.Rejoin)
		return []packet.ToClient{packet.AcceptJoin{RoomCode: rj.RoomCode, PlayerID: rj.PlayerID, InGame: true}}
	}}
	m := newTestManager(t, srv, time.Second)

	require.NoError(t, m.Rejoin(testCtx(t), 42, 9))
	g := mustGame(t, m.State())
	assert.Equal(t, state.PlayerID(9), *g.MyID)
	assert.Equal(t, []packet.ToServer{packet.Rejoin{RoomCode: 42, PlayerID: 9}}, srv.conn(t, 0).packets())
}

func TestHost(t *testing.T) {
	srv := &fakeServer{reply: acceptAll}
	m := newTestManager(t, srv, time.Second)

	require.NoError(t, m.Host(testCtx(t)))
	settle(t, m)
	l := mustLobby(t, m.State())
	require.NotNil(t, l.MyID)
	assert.Equal(t, state.PlayerID(1), *l.MyID)
}

func TestConnectTimesOut(t *testing.T) {
	srv := &fakeServer{}
	m := newTestManager(t, srv, 30*time.Millisecond)

	err := m.Connect(testCtx(t), 42)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, state.ConnDisconnected, m.State().Connection())
	assert.True(t, srv.conn(t, 0).isClosed())
}

func TestConnectContextCancelled(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.Connect(ctx, 42)
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	settle(t, m)
	assert.Equal(t, state.ConnDisconnected, m.State().Connection())
}

func TestSecondRequestWhilePending(t *testing.T) {
	srv := &fakeServer{}
	m := newTestManager(t, srv, time.Minute)

	first := make(chan error, 1)
	go func() { first <- m.Connect(context.Background(), 1) }()
	c := srv.conn(t, 0)
	require.Eventually(t, func() bool { return len(c.packets()) == 1 }, time.Second, time.Millisecond)

	assert.ErrorIs(t, m.Connect(testCtx(t), 2), ErrRequestPending)

	require.NoError(t, m.Leave(testCtx(t)))
	select {
	case err := <-first:
		assert.ErrorIs(t, err, ErrNetwork)
	case <-time.After(time.Second):
		t.Fatal("pending request not failed by Leave")
	}
}

func TestDialFailure(t *testing.T) {
	m := newTestManager(t, &fakeServer{dialErr: errors.New("connection refused")}, time.Second)

	err := m.Connect(testCtx(t), 42)
	require.ErrorIs(t, err, ErrNetwork)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, state.ConnDisconnected, m.State().Connection())
}

func TestCloseBeforeAnswerFailsRequest(t *testing.T) {
	var srv *fakeServer
	srv = &fakeServer{reply: func(packet.ToServer) []packet.ToClient {
		srv.conns[0].h.OnClose(errors.New("reset by peer"))
		return nil
	}}
	m := newTestManager(t, srv, time.Second)

	err := m.Connect(testCtx(t), 42)
	require.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, state.ConnDisconnected, m.State().Connection())
}

func TestConnectionLossDisconnects(t *testing.T) {
	srv := &fakeServer{reply: acceptAll}
	m := newTestManager(t, srv, time.Second)
	require.NoError(t, m.Connect(testCtx(t), 42))

	rec := &recorder{}
	m.Subscribe(rec.listen)
	srv.conn(t, 0).h.OnClose(nil)
	settle(t, m)

	assert.Equal(t, state.ConnDisconnected, m.State().Connection())
	assert.Equal(t, []EventType{EventDisconnect}, rec.all())
}

func TestPacketsFromOldConnectionAreDropped(t *testing.T) {
	srv := &fakeServer{reply: acceptAll}
	m := newTestManager(t, srv, time.Second)
	require.NoError(t, m.Connect(testCtx(t), 42))
	require.NoError(t, m.Connect(testCtx(t), 43))

	old := srv.conn(t, 0)
	assert.True(t, old.isClosed())
	old.h.OnMessage(packet.LobbyName{Name: "stale"})
	old.h.OnClose(nil)
	settle(t, m)

	l := mustLobby(t, m.State())
	assert.Equal(t, state.RoomCode(43), l.RoomCode)
	assert.NotEqual(t, "stale", l.LobbyName)

	srv.conn(t, 1).h.OnMessage(packet.LobbyName{Name: "fresh"})
	settle(t, m)
	assert.Equal(t, "fresh", mustLobby(t, m.State()).LobbyName)
}

func TestLeaveResetsAndIsIdempotent(t *testing.T) {
	srv := &fakeServer{reply: acceptAll}
	m := newTestManager(t, srv, time.Second)
	require.NoError(t, m.Connect(testCtx(t), 42))

	rec := &recorder{}
	m.Subscribe(rec.listen)
	require.NoError(t, m.Leave(testCtx(t)))
	require.NoError(t, m.Leave(testCtx(t)))

	assert.Equal(t, state.ConnOutsideLobby, m.State().Connection())
	c := srv.conn(t, 0)
	assert.Equal(t, packet.Leave{}, c.packets()[len(c.packets())-1])
	assert.True(t, c.isClosed())
	assert.Equal(t, []EventType{EventLeave}, rec.all())
}

func TestTwoListenersSeeChatOnce(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	enterGame(t, m, "ada")

	a, b := &recorder{}, &recorder{}
	m.Subscribe(a.listen)
	m.Subscribe(b.listen)
	dispatch(t, m, packet.AddChatMessages{ChatMessages: []state.ChatMessage{{Type: "1"}, {Type: "2"}, {Type: "3"}}})

	assert.Equal(t, []EventType{"addChatMessages"}, a.all())
	assert.Equal(t, []EventType{"addChatMessages"}, b.all())

	chat := mustGame(t, m.State()).ChatMessages
	require.Len(t, chat, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{chat[0].Type, chat[1].Type, chat[2].Type})
}

func TestUnsubscribe(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	rec := &recorder{}
	sub := m.Subscribe(rec.listen)
	dispatch(t, m, packet.Unknown{Type: "one"})
	m.Unsubscribe(sub)
	dispatch(t, m, packet.Unknown{Type: "two"})

	assert.Equal(t, []EventType{"one"}, rec.all())
}

func TestListenerMayUnsubscribeItself(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	rec := &recorder{}
	var sub Subscription
	sub = m.Subscribe(func(ev EventType) {
		rec.listen(ev)
		m.Unsubscribe(sub)
	})
	dispatch(t, m, packet.Unknown{Type: "one"}, packet.Unknown{Type: "two"})

	assert.Equal(t, []EventType{"one"}, rec.all())
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	m.Subscribe(func(EventType) { panic("boom") })
	rec := &recorder{}
	m.Subscribe(rec.listen)

	dispatch(t, m, packet.Unknown{Type: "x"}, packet.Unknown{Type: "y"})
	assert.Equal(t, []EventType{"x", "y"}, rec.all())
}

func TestUnknownPacketNotifiesWithoutChange(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	enterGame(t, m, "ada")
	before := m.State()

	rec := &recorder{}
	m.Subscribe(rec.listen)
	dispatch(t, m, packet.Unknown{Type: "yourSyndicateGunItem"})

	assert.True(t, before == m.State())
	assert.Equal(t, []EventType{"yourSyndicateGunItem"}, rec.all())
}

func TestSnapshotsAreNeverWritten(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	enterGame(t, m, "ada", "bo")
	old := mustGame(t, m.State())

	dispatch(t, m,
		packet.AddChatMessages{ChatMessages: []state.ChatMessage{{Type: "a"}}},
		packet.PlayerAlive{Alive: []bool{true, false}},
		packet.YourWill{Will: "new will"},
	)

	assert.Empty(t, old.ChatMessages)
	assert.True(t, old.Players[1].Alive)
	assert.Empty(t, old.Will)
	assert.Len(t, mustGame(t, m.State()).ChatMessages, 1)
}

func TestTickCountsDownAndClamps(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	enterGame(t, m, "ada")
	dispatch(t, m, packet.PhaseTimeLeft{SecondsLeft: 1})

	rec := &recorder{}
	m.Subscribe(rec.listen)
	for i := 0; i < 4; i++ {
		m.Tick(400 * time.Millisecond)
	}
	settle(t, m)

	assert.Zero(t, mustGame(t, m.State()).TimeLeft)
	assert.Equal(t, 3, rec.count(EventTick), "no tick event once the timer hits zero")
	assert.Nil(t, mustGame(t, m.State()).Phase, "ticks never advance the phase")
}

func TestTickerDrivesTimer(t *testing.T) {
	m := New(context.Background(), &fakeServer{}, Config{TickInterval: 5 * time.Millisecond, JoinTimeout: time.Second}, zap.NewNop())
	t.Cleanup(func() { _ = m.Close() })
	enterGame(t, m, "ada")
	dispatch(t, m, packet.PhaseTimeLeft{SecondsLeft: 10})

	require.Eventually(t, func() bool {
		g, ok := m.State().(*state.GameState)
		return ok && g.TimeLeft < 10*time.Second
	}, time.Second, time.Millisecond)
}

func TestGameOverStopsTicks(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	enterGame(t, m, "ada")
	dispatch(t, m, packet.PhaseTimeLeft{SecondsLeft: 5}, packet.GameOver{Reason: "draw"})

	m.Tick(time.Second)
	settle(t, m)
	assert.Equal(t, 5*time.Second, mustGame(t, m.State()).TimeLeft)
}

func TestOutboundActions(t *testing.T) {
	srv := &fakeServer{reply: func(p packet.ToServer) []packet.ToClient {
		if _, ok := p.(packet.Join); ok {
			return []packet.ToClient{packet.AcceptJoin{RoomCode: 42, PlayerID: 1, InGame: true}}
		}
		return nil
	}}
	m := newTestManager(t, srv, time.Second)
	require.NoError(t, m.Connect(testCtx(t), 42))
	dispatch(t, m,
		packet.GamePlayers{Players: []string{"ada", "bo"}},
		packet.YourPlayerIndex{PlayerIndex: 0},
		packet.Phase{Phase: state.PhaseVoting, DayNumber: 2},
	)

	m.SendVote(ptr(state.PlayerIndex(1)))
	m.SendTarget([]state.PlayerIndex{1}) // not night
	m.SendSetName("ignored in game")
	m.SendMessage("vote @2")
	m.SendWhisper(1, "hi")
	settle(t, m)

	assert.Equal(t, []packet.ToServer{
		packet.Join{RoomCode: 42},
		packet.Vote{PlayerIndex: ptr(state.PlayerIndex(1))},
		packet.SendMessage{Text: "vote bo"},
		packet.SendWhisper{PlayerIndex: 1, Text: "hi"},
	}, srv.conn(t, 0).packets())
}

func TestOutboundWithoutConnectionIsNoop(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	enterGame(t, m, "ada", "bo")
	dispatch(t, m, packet.Phase{Phase: state.PhaseVoting})

	m.SendVote(nil)
	settle(t, m)
	assert.Equal(t, state.ConnGame, m.State().Connection())
}

func TestChatFilter(t *testing.T) {
	m := newTestManager(t, &fakeServer{}, time.Second)
	enterGame(t, m, "ada", "bo")

	rec := &recorder{}
	m.Subscribe(rec.listen)
	m.SetChatFilter(ptr(state.PlayerIndex(1)))
	m.SetChatFilter(ptr(state.PlayerIndex(7)))
	settle(t, m)

	g := mustGame(t, m.State())
	require.NotNil(t, g.ChatFilter)
	assert.Equal(t, state.PlayerIndex(1), *g.ChatFilter)
	assert.Equal(t, []EventType{EventFilterUpdate}, rec.all())

	m.SetChatFilter(nil)
	settle(t, m)
	assert.Nil(t, mustGame(t, m.State()).ChatFilter)
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := &fakeServer{reply: acceptAll}
	m := New(context.Background(), srv, Config{TickInterval: time.Millisecond, JoinTimeout: time.Second}, zap.NewNop())
	require.NoError(t, m.Connect(testCtx(t), 42))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.True(t, srv.conn(t, 0).isClosed())

	assert.ErrorIs(t, m.Connect(testCtx(t), 42), ErrClosed)
	assert.ErrorIs(t, m.Sync(testCtx(t)), ErrClosed)
}
