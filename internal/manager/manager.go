package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DoyleJ11/mafia-client/internal/packet"
	"github.com/DoyleJ11/mafia-client/internal/state"
	"github.com/DoyleJ11/mafia-client/internal/ticker"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// EventType tags a listener call: the type of the packet that was applied,
// or one of the synthetic events below.
type EventType string

const (
	EventTick         EventType = "tick"
	EventLeave        EventType = "leave"
	EventDisconnect   EventType = "disconnect"
	EventFilterUpdate EventType = "filterUpdate"
)

// Listener is called on the manager's loop goroutine after every applied
// transition. It must not call the blocking methods (Connect, Rejoin, Host,
// Leave, Sync).
type Listener func(ev EventType)

type Subscription uint64

type Config struct {
	// TickInterval is how often the game timer counts down. Zero disables
	// the ticker; Tick can still be called by hand.
	TickInterval time.Duration
	JoinTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{TickInterval: time.Second, JoinTimeout: 10 * time.Second}
}

// Loop messages.
type msg interface{ isMsg() }

type inbound struct {
	gen uint64 // 0 for packets handed in through DispatchInbound
	p   packet.ToClient
}

type tick struct{ elapsed time.Duration }

type beginRequest struct {
	p     packet.ToServer
	reply chan error
}

type cancelRequest struct {
	reply chan error
	err   error
}

type requestExpired struct{ req *request }

type transportOpened struct {
	gen  uint64
	conn Conn
	err  error
}

type transportClosed struct {
	gen uint64
	err error
}

type leave struct{ done chan struct{} }

type outbound struct {
	kind  packet.Type
	build builder
}

type setChatFilter struct{ index *state.PlayerIndex }

type barrier struct{ done chan struct{} }

func (inbound) isMsg()         {}
func (tick) isMsg()            {}
func (beginRequest) isMsg()    {}
func (cancelRequest) isMsg()   {}
func (requestExpired) isMsg()  {}
func (transportOpened) isMsg() {}
func (transportClosed) isMsg() {}
func (leave) isMsg()           {}
func (outbound) isMsg()        {}
func (setChatFilter) isMsg()   {}
func (barrier) isMsg()         {}

type request struct {
	p     packet.ToServer
	reply chan error
	timer *time.Timer
}

type listener struct {
	id Subscription
	fn Listener
}

type snapshot struct{ s state.State }

// Manager owns the client's mirror of the server state. All transitions
// happen on one loop goroutine; State can be read from anywhere.
type Manager struct {
	inbox  chan msg
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	log    *zap.Logger
	dialer Dialer
	cfg    Config
	ticker *ticker.Ticker

	current atomic.Pointer[snapshot]

	mu        sync.Mutex
	listeners []listener
	nextSub   Subscription

	closeOnce sync.Once
	closeErr  error

	// Owned by the loop.
	state   state.State
	conn    Conn
	gen     uint64
	pending *request
}

func New(parent context.Context, dialer Dialer, cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = DefaultConfig().JoinTimeout
	}
	ctx, cancel := context.WithCancel(parent)

	m := &Manager{
		inbox:  make(chan msg, 256),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		log:    log,
		dialer: dialer,
		cfg:    cfg,
	}
	m.setState(state.OutsideLobby{})

	go m.loop()
	if cfg.TickInterval > 0 {
		m.ticker = ticker.Start(ctx, cfg.TickInterval, m.Tick)
	}
	return m
}

func (m *Manager) loop() {
	defer close(m.done)
	for {
		select {
		case <-m.ctx.Done():
			m.shutdown()
			return

		case in := <-m.inbox:
			switch x := in.(type) {
			case inbound:
				if x.gen != 0 && x.gen != m.gen {
					m.log.Debug("dropping packet from old connection",
						zap.String("type", string(x.p.PacketType())), zap.Uint64("gen", x.gen))
					break
				}
				m.apply(x.p)

			case tick:
				if next, ok := tickState(m.state, x.elapsed); ok {
					m.setState(next)
					m.notify(EventTick)
				}

			case beginRequest:
				m.begin(x)

			case cancelRequest:
				if m.pending != nil && m.pending.reply == x.reply {
					m.lost(fmt.Errorf("%w: %w", ErrTimeout, x.err))
				}

			case requestExpired:
				if m.pending == x.req {
					m.log.Info("join request timed out", zap.Duration("after", m.cfg.JoinTimeout))
					m.lost(ErrTimeout)
				}

			case transportOpened:
				m.opened(x)

			case transportClosed:
				if x.gen != m.gen {
					break
				}
				m.log.Info("connection closed", zap.Uint64("gen", x.gen), zap.Error(x.err))
				m.lost(networkError(x.err))

			case leave:
				m.leave()
				close(x.done)

			case outbound:
				m.send(x)

			case setChatFilter:
				g, ok := m.state.(*state.GameState)
				if !ok || (x.index != nil && !g.ValidIndex(*x.index)) {
					break
				}
				next := g.Clone()
				next.ChatFilter = x.index
				m.setState(next)
				m.notify(EventFilterUpdate)

			case barrier:
				close(x.done)
			}
		}
	}
}

func (m *Manager) apply(p packet.ToClient) {
	next, res := reduce(m.state, p)
	m.setState(next)
	if res != nil {
		if res.err != nil {
			m.dropConn()
		}
		m.finish(res.err)
	}
	m.notify(EventType(p.PacketType()))
}

func (m *Manager) begin(x beginRequest) {
	if m.pending != nil {
		x.reply <- ErrRequestPending
		return
	}
	m.dropConn()
	if m.state.Connection() != state.ConnOutsideLobby {
		m.setState(state.OutsideLobby{})
		m.notify(EventLeave)
	}

	req := &request{p: x.p, reply: x.reply}
	req.timer = time.AfterFunc(m.cfg.JoinTimeout, func() { m.post(requestExpired{req: req}) })
	m.pending = req

	gen := m.gen
	m.log.Debug("dialing", zap.String("request", string(x.p.PacketType())), zap.Uint64("gen", gen))
	go m.dial(gen)
}

func (m *Manager) dial(gen uint64) {
	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.JoinTimeout)
	defer cancel()
	c, err := m.dialer.Dial(ctx, connHandler{m: m, gen: gen})
	if !m.post(transportOpened{gen: gen, conn: c, err: err}) && c != nil {
		_ = c.Close()
	}
}

func (m *Manager) opened(x transportOpened) {
	if x.gen != m.gen {
		if x.conn != nil {
			_ = x.conn.Close()
		}
		return
	}
	if x.err != nil {
		m.log.Warn("dial failed", zap.Error(x.err))
		m.lost(networkError(x.err))
		return
	}
	m.conn = x.conn
	if m.pending == nil {
		return
	}
	if err := m.conn.Send(m.pending.p); err != nil {
		m.lost(networkError(err))
	}
}

// lost handles the end of the current connection or request: the
// connection is dropped, a pending request fails with err and the state
// becomes Disconnected.
func (m *Manager) lost(err error) {
	m.dropConn()
	m.finish(err)
	if m.state.Connection() != state.ConnDisconnected {
		m.setState(state.Disconnected{})
		m.notify(EventDisconnect)
	}
}

func (m *Manager) leave() {
	if m.conn != nil {
		if err := m.conn.Send(packet.Leave{}); err != nil {
			m.log.Debug("leave not sent", zap.Error(err))
		}
	}
	m.dropConn()
	m.finish(fmt.Errorf("%w: left before the server answered", ErrNetwork))
	if m.state.Connection() != state.ConnOutsideLobby {
		m.setState(state.OutsideLobby{})
		m.notify(EventLeave)
	}
}

func (m *Manager) send(x outbound) {
	p, ok := x.build(m.state)
	if !ok {
		m.log.Debug("action not applicable",
			zap.String("type", string(x.kind)), zap.String("state", string(m.state.Connection())))
		return
	}
	if m.conn == nil {
		m.log.Debug("no connection", zap.String("type", string(x.kind)))
		return
	}
	if err := m.conn.Send(p); err != nil {
		m.log.Warn("send failed", zap.String("type", string(x.kind)), zap.Error(err))
	}
}

// finish answers the pending request, if any.
func (m *Manager) finish(err error) {
	req := m.pending
	if req == nil {
		return
	}
	m.pending = nil
	req.timer.Stop()
	req.reply <- err
}

// dropConn closes the current connection and moves to a new generation so
// callbacks still in flight from it are ignored.
func (m *Manager) dropConn() error {
	m.gen++
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	if err != nil {
		m.log.Debug("close connection", zap.Error(err))
	}
	m.conn = nil
	return err
}

func (m *Manager) shutdown() {
	m.closeErr = multierr.Append(m.closeErr, m.dropConn())
	m.finish(ErrClosed)
}

func (m *Manager) setState(s state.State) {
	m.state = s
	m.current.Store(&snapshot{s: s})
}

func (m *Manager) notify(ev EventType) {
	m.mu.Lock()
	ls := m.listeners
	m.mu.Unlock()
	for _, l := range ls {
		m.call(l, ev)
	}
}

func (m *Manager) call(l listener, ev EventType) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("listener panicked", zap.String("event", string(ev)), zap.Any("panic", r))
		}
	}()
	l.fn(ev)
}

// post hands x to the loop. It reports false once the manager is closed.
func (m *Manager) post(x msg) bool {
	select {
	case m.inbox <- x:
		return true
	case <-m.ctx.Done():
		return false
	}
}

func (m *Manager) postCtx(ctx context.Context, x msg) error {
	select {
	case m.inbox <- x:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.ctx.Done():
		return ErrClosed
	}
}

// State returns the current snapshot. Callers must not modify it.
func (m *Manager) State() state.State {
	return m.current.Load().s
}

// Subscribe registers fn for every later event. Safe to call from a
// listener; the new listener sees events after the current one.
func (m *Manager) Subscribe(fn Listener) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSub++
	l := listener{id: m.nextSub, fn: fn}
	m.listeners = append(slices.Clip(m.listeners), l)
	return l.id
}

// Unsubscribe removes a listener. An event already being delivered still
// reaches it.
func (m *Manager) Unsubscribe(s Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = slices.DeleteFunc(slices.Clone(m.listeners), func(l listener) bool { return l.id == s })
}

// Connect joins the room with a fresh player. It returns once the server
// accepted or rejected the join, the connection failed, or the request
// timed out.
func (m *Manager) Connect(ctx context.Context, code state.RoomCode) error {
	return m.request(ctx, packet.Join{RoomCode: code})
}

// Rejoin resumes a seat the server issued earlier.
func (m *Manager) Rejoin(ctx context.Context, code state.RoomCode, id state.PlayerID) error {
	return m.request(ctx, packet.Rejoin{RoomCode: code, PlayerID: id})
}

// Host opens a new room with the local player as host.
func (m *Manager) Host(ctx context.Context) error {
	return m.request(ctx, packet.Host{})
}

func (m *Manager) request(ctx context.Context, p packet.ToServer) error {
	reply := make(chan error, 1)
	if err := m.postCtx(ctx, beginRequest{p: p, reply: reply}); err != nil {
		if errors.Is(err, ErrClosed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		select {
		case err := <-reply:
			return err
		default:
		}
		m.post(cancelRequest{reply: reply, err: ctx.Err()})
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	case <-m.done:
		return ErrClosed
	}
}

// Leave closes the connection and returns to OutsideLobby. Calling it when
// not in a room does nothing.
func (m *Manager) Leave(ctx context.Context) error {
	done := make(chan struct{})
	if err := m.postCtx(ctx, leave{done: done}); err != nil {
		return err
	}
	return m.wait(ctx, done)
}

// Sync returns after every event enqueued before it has been applied.
func (m *Manager) Sync(ctx context.Context) error {
	done := make(chan struct{})
	if err := m.postCtx(ctx, barrier{done: done}); err != nil {
		return err
	}
	return m.wait(ctx, done)
}

func (m *Manager) wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return ErrClosed
	}
}

// DispatchInbound queues a server packet for the reducer.
func (m *Manager) DispatchInbound(p packet.ToClient) {
	m.post(inbound{p: p})
}

// Tick counts the game timer down by elapsed.
func (m *Manager) Tick(elapsed time.Duration) {
	m.post(tick{elapsed: elapsed})
}

// SetChatFilter shows only chat mentioning the given player. nil clears it.
func (m *Manager) SetChatFilter(i *state.PlayerIndex) {
	if i != nil {
		v := *i
		i = &v
	}
	m.post(setChatFilter{index: i})
}

// Credentials returns the room and player id the server issued, for a later
// Rejoin.
func (m *Manager) Credentials() (state.RoomCode, state.PlayerID, bool) {
	switch s := m.State().(type) {
	case *state.LobbyState:
		if s.MyID != nil {
			return s.RoomCode, *s.MyID, true
		}
	case *state.GameState:
		if s.MyID != nil {
			return s.RoomCode, *s.MyID, true
		}
	}
	return 0, 0, false
}

// Close stops the loop and the ticker and closes the connection.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.cancel()
		<-m.done
		if m.ticker != nil {
			m.ticker.Stop()
		}
	})
	return m.closeErr
}

func (m *Manager) act(kind packet.Type, b builder) {
	m.post(outbound{kind: kind, build: b})
}

func (m *Manager) SendSetName(name string) { m.act(packet.TypeSetName, buildSetName(name)) }
func (m *Manager) SendReady(ready bool)    { m.act(packet.TypeReadyUp, buildReady(ready)) }
func (m *Manager) SendStartGame()          { m.act(packet.TypeStartGame, buildStartGame()) }

func (m *Manager) SendSetPhaseTime(p state.Phase, seconds int) {
	m.act(packet.TypeSetPhaseTime, buildSetPhaseTime(p, seconds))
}

func (m *Manager) SendSetPhaseTimes(t state.PhaseTimes) {
	m.act(packet.TypeSetPhaseTimes, buildSetPhaseTimes(t))
}

func (m *Manager) SendSetRoleList(list []state.RoleListEntry) {
	m.act(packet.TypeSetRoleList, buildSetRoleList(list))
}

func (m *Manager) SendExcludedRoles(roles []state.RoleListEntry) {
	m.act(packet.TypeSetExcludedRoles, buildExcludedRoles(roles))
}

func (m *Manager) SendJudgement(v state.Verdict) { m.act(packet.TypeJudgement, buildJudgement(v)) }

// SendVote votes for votee; nil withdraws the vote.
func (m *Manager) SendVote(votee *state.PlayerIndex) { m.act(packet.TypeVote, buildVote(votee)) }

func (m *Manager) SendTarget(targets []state.PlayerIndex) {
	m.act(packet.TypeTarget, buildTarget(targets))
}

func (m *Manager) SendDayTarget(target state.PlayerIndex) {
	m.act(packet.TypeDayTarget, buildDayTarget(target))
}

func (m *Manager) SendSaveWill(will string)   { m.act(packet.TypeSaveWill, buildSaveWill(will)) }
func (m *Manager) SendSaveNotes(notes string) { m.act(packet.TypeSaveNotes, buildSaveNotes(notes)) }

func (m *Manager) SendSaveCrossedOutOutlines(outlines []int) {
	m.act(packet.TypeSaveCrossedOutOutlines, buildSaveCrossedOutOutlines(outlines))
}

func (m *Manager) SendSaveDeathNote(note string) {
	m.act(packet.TypeSaveDeathNote, buildSaveDeathNote(note))
}

// SendMessage posts to the chat. @n and @name mentions are expanded to
// player names.
func (m *Manager) SendMessage(text string) { m.act(packet.TypeSendMessage, buildSendMessage(text)) }

func (m *Manager) SendWhisper(to state.PlayerIndex, text string) {
	m.act(packet.TypeSendWhisper, buildSendWhisper(to, text))
}

func (m *Manager) SendVoteFastForward(fastForward bool) {
	m.act(packet.TypeVoteFastForwardPhase, buildVoteFastForward(fastForward))
}
