package manager

import (
	"context"

	"github.com/DoyleJ11/mafia-client/internal/packet"
	"go.uber.org/zap"
)

// Handler receives the events of one connection, in order, from the
// connection's read goroutine.
type Handler interface {
	OnOpen()
	OnMessage(p packet.ToClient)
	// OnClose is called once. err is nil for a normal closure.
	OnClose(err error)
}

// Conn is an open connection to the game server.
type Conn interface {
	// Send queues p for writing and does not wait for the network.
	Send(p packet.ToServer) error
	Close() error
}

// Dialer opens connections. The manager dials once per join request.
type Dialer interface {
	Dial(ctx context.Context, h Handler) (Conn, error)
}

type DialerFunc func(ctx context.Context, h Handler) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context, h Handler) (Conn, error) { return f(ctx, h) }

// connHandler tags every callback with the generation of the connection it
// belongs to, so the loop can drop events from superseded connections.
type connHandler struct {
	m   *Manager
	gen uint64
}

func (h connHandler) OnOpen() {
	h.m.log.Debug("connection open", zap.Uint64("gen", h.gen))
}

func (h connHandler) OnMessage(p packet.ToClient) {
	h.m.post(inbound{gen: h.gen, p: p})
}

func (h connHandler) OnClose(err error) {
	h.m.post(transportClosed{gen: h.gen, err: err})
}
