// Package live pushes committed region updates of a session to the browser
// over a websocket. Each message is an out-of-band fragment the htmx ws
// extension swaps into the page.
package live

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/view"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 90 * time.Second
	pingPeriod = 45 * time.Second
	bufferSize = 32
)

// Feed is a source of region updates that ends when Done is closed.
type Feed interface {
	Regions() *view.Regions
	Done() <-chan struct{}
}

// Lookup resolves the feed of a request.
type Lookup func(r *http.Request) (Feed, bool)

// Gauge counts open connections.
type Gauge interface {
	Inc()
	Dec()
}

// Handler upgrades requests and streams the feed of their session.
type Handler struct {
	lookup     Lookup
	upgrader   websocket.Upgrader
	gauge      Gauge
	logger     *zap.Logger
	pingPeriod time.Duration
	pongWait   time.Duration
}

// NewHandler creates a websocket handler. gauge may be nil.
func NewHandler(lookup Lookup, gauge Gauge, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		lookup: lookup,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		gauge:      gauge,
		logger:     logger,
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	feed, ok := h.lookup(r)
	if !ok {
		http.Error(w, "no session", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := feed.Regions().Subscribe(bufferSize)
	defer cancel()

	if h.gauge != nil {
		h.gauge.Inc()
		defer h.gauge.Dec()
	}

	readDone := make(chan struct{})
	go h.readLoop(conn, readDone)

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(view.OOB(u.Region, u.HTML))); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-feed.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
				time.Now().Add(writeWait))
			return
		case <-readDone:
			return
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed.
// The page sends nothing the server acts on.
func (h *Handler) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
	}
}
