// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "eq/internal/log"
	"eq/internal/render"
)

// WebSocketConsumer broadcasts frames as JSON to every connected
// WebSocket client. Frames are queued on a bounded channel; when the
// queue is full the newest frame is dropped so Consume never blocks.
type WebSocketConsumer struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	frames    chan render.Frame
	server    *http.Server
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewWebSocketConsumer starts an HTTP server on addr serving WebSocket
// upgrades at /frames and begins broadcasting queued frames.
func NewWebSocketConsumer(addr string) *WebSocketConsumer {
	c := &WebSocketConsumer{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]bool),
		frames:  make(chan render.Frame, 16),
		done:    make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/frames", c.handleUpgrade)
	c.server = &http.Server{Addr: addr, Handler: mux}

	c.wg.Add(2)
	go c.serve()
	go c.broadcast()
	return c
}

func (c *WebSocketConsumer) serve() {
	defer c.wg.Done()
	applog.Infof("websocket: serving frames on ws://%s/frames", c.addr)
	if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		applog.Errorf("websocket: server error: %v", err)
	}
}

func (c *WebSocketConsumer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("websocket: upgrade failed: %v", err)
		return
	}

	c.clientsMu.Lock()
	c.clients[conn] = true
	total := len(c.clients)
	c.clientsMu.Unlock()
	applog.Infof("websocket: client connected (%d total)", total)

	// Drain the read side so pings and close frames are processed;
	// the first read error unregisters the client.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				c.drop(conn)
				return
			}
		}
	}()
}

func (c *WebSocketConsumer) drop(conn *websocket.Conn) {
	c.clientsMu.Lock()
	if _, ok := c.clients[conn]; ok {
		delete(c.clients, conn)
		conn.Close()
		applog.Infof("websocket: client disconnected (%d total)", len(c.clients))
	}
	c.clientsMu.Unlock()
}

func (c *WebSocketConsumer) broadcast() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.frames:
			c.clientsMu.Lock()
			for conn := range c.clients {
				if err := conn.WriteJSON(frame); err != nil {
					applog.Warnf("websocket: write failed, dropping client: %v", err)
					delete(c.clients, conn)
					conn.Close()
				}
			}
			c.clientsMu.Unlock()
		}
	}
}

// Consume queues the frame for broadcast. It never blocks: if the
// queue is full the frame is discarded.
func (c *WebSocketConsumer) Consume(frame render.Frame) error {
	select {
	case c.frames <- frame:
	default:
	}
	return nil
}

// Close shuts the server down and disconnects all clients. Safe to
// call more than once.
func (c *WebSocketConsumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.clientsMu.Lock()
		for conn := range c.clients {
			conn.Close()
		}
		c.clients = make(map[*websocket.Conn]bool)
		c.clientsMu.Unlock()

		err = c.server.Close()
		c.wg.Wait()
	})
	return err
}

var _ Consumer = (*WebSocketConsumer)(nil)
