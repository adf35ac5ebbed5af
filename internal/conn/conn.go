package conn

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DoyleJ11/mafia-client/internal/packet"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBufferFull = errors.New("send buffer full")
)

const (
	readLimit    = 1 << 20
	sendBuffer   = 64
	writeTimeout = 3 * time.Second
	pingInterval = 20 * time.Second
)

// Handler receives the events of a connection from its read goroutine.
type Handler interface {
	OnOpen()
	OnMessage(p packet.ToClient)
	// OnClose is called once when the connection ends. err is nil for a
	// normal closure from either side.
	OnClose(err error)
}

// Dialer opens websocket connections to one game server URL.
type Dialer struct {
	url string
	log *zap.Logger
}

func NewDialer(url string, log *zap.Logger) *Dialer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dialer{url: url, log: log}
}

// Conn is one websocket connection. Frames are decoded into packets on a
// reader goroutine; packets are encoded and written on a writer goroutine.
type Conn struct {
	ID string

	ws     *websocket.Conn
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	out    chan []byte
	closed bool
}

// Dial connects and starts the connection's goroutines. ctx bounds the
// handshake only.
func (d *Dialer) Dial(ctx context.Context, h Handler) (*Conn, error) {
	ws, _, err := websocket.Dial(ctx, d.url, nil)
	if err != nil {
		return nil, err
	}
	ws.SetReadLimit(readLimit)

	id := uuid.NewString()
	cctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		ID:     id,
		ws:     ws,
		log:    d.log.With(zap.String("conn", id)),
		ctx:    cctx,
		cancel: cancel,
		done:   make(chan struct{}),
		out:    make(chan []byte, sendBuffer),
	}
	c.log.Debug("connected", zap.String("url", d.url))

	h.OnOpen()
	go c.writeLoop()
	go c.readLoop(h)
	return c, nil
}

// Send encodes p and queues it for the writer. It does not block.
func (c *Conn) Send(p packet.ToServer) error {
	data, err := packet.Encode(p)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case c.out <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close flushes queued packets and closes the websocket normally. It does
// not wait for the close handshake.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.out)
	return nil
}

// Done is closed once the reader has stopped and OnClose was called.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) readLoop(h Handler) {
	defer close(c.done)
	defer c.cancel()
	for {
		_, data, err := c.ws.Read(c.ctx)
		if err != nil {
			h.OnClose(c.closeReason(err))
			return
		}
		p, err := packet.Decode(data)
		if err != nil {
			c.log.Debug("dropping malformed frame", zap.Error(err))
			continue
		}
		h.OnMessage(p)
	}
}

func (c *Conn) closeReason(err error) error {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return nil
	}
	c.mu.Lock()
	local := c.closed
	c.mu.Unlock()
	if local {
		return nil
	}
	return err
}

func (c *Conn) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return

		case data, ok := <-c.out:
			if !ok {
				if err := c.ws.Close(websocket.StatusNormalClosure, "bye"); err != nil {
					c.log.Debug("close handshake", zap.Error(err))
				}
				return
			}
			ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err := c.ws.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.log.Warn("write failed", zap.Error(err))
				_ = c.ws.CloseNow()
				return
			}

		case <-ping.C:
			ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err := c.ws.Ping(ctx)
			cancel()
			if err != nil {
				c.log.Warn("ping failed", zap.Error(err))
				_ = c.ws.CloseNow()
				return
			}
		}
	}
}
