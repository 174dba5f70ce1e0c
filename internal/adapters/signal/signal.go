package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Options tune a single WebSocket channel.
type Options struct {
	ReadLimit    int64
	PingPeriod   time.Duration
	SendBuffer   int
	RequireToken bool
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Identity core.IdentityVerifier
	Limiter  *RateLimiter
	Options  Options
}

func NewSignalWSController(o *orch.Orchestrator, identity core.IdentityVerifier, limiter *RateLimiter, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch:     o,
		Identity: identity,
		Limiter:  limiter,
		Options:  opts,
	}
}

// WsSignalConn is the outbound half of one channel. It implements
// core.SignalConnection; frames are encoded here and written by writePump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		conn: ws,
		send: make(chan []byte, buffer),
	}
}

func (c *WsSignalConn) TrySend(ev core.OutboundEvent) error {
	frame, err := encodeOutbound(ev)
	if err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- frame:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.ConnectionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newWsSignalConn(ws, ctl.Options.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)

	// Connect must be dispatched before the read pump starts so that
	// per-connection ordering holds from the very first event.
	ctl.Orch.Dispatch(sid, core.Connect{Signal: conn})

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
