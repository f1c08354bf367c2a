package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const reloadMessage = "reload"

const writeWait = 5 * time.Second

// reloadClient is injected before </body> when live reload is on.
const reloadClient = `<script id="navpatch-livereload">(function(){var p=location.protocol==="https:"?"wss://":"ws://";var s=new WebSocket(p+location.host+"/ws/reload");s.onmessage=function(e){if(e.data==="reload"){location.reload();}};})();</script>`

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans reload notifications out to connected browsers.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
	log     *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{}), log: logger}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade", "error", err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Clients never send anything; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read", "error", err)
			}
			return
		}
	}
}

// Broadcast sends msg to every client.
func (h *Hub) Broadcast(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			h.log.Debug("websocket write", "error", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, conn)
	}
}

// injectReloadClient inserts the reload client before the last </body>, or
// appends it when the page has none.
func injectReloadClient(page []byte) []byte {
	idx := lastBodyClose(page)
	if idx < 0 {
		return append(page, reloadClient...)
	}
	out := make([]byte, 0, len(page)+len(reloadClient))
	out = append(out, page[:idx]...)
	out = append(out, reloadClient...)
	return append(out, page[idx:]...)
}

func lastBodyClose(page []byte) int {
	tag := []byte("</body>")
	for i := len(page) - len(tag); i >= 0; i-- {
		if page[i] == '<' && bytes.EqualFold(page[i:i+len(tag)], tag) {
			return i
		}
	}
	return -1
}
