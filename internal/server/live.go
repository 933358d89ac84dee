package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alnah/labnotes/internal/notes"
)

// LivePath is the websocket endpoint pages connect to for reloads.
const LivePath = "/_live"

const liveWriteTimeout = 5 * time.Second

// liveScript reloads the page when the server reports a change to the
// note on display or to every note. It reconnects after the server
// restarts. noteMarker is replaced by the ID of the page's note.
const liveScript = `(function () {
  var note = "` + noteMarker + `";
  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "` + LivePath + `");
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      if (msg.action === "reload" && (!msg.note || msg.note === note)) {
        location.reload();
      }
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();`

const noteMarker = "{{note}}"

// liveScriptFor returns the live reload script of the page showing id.
// Note IDs need no escaping inside a string literal.
func liveScriptFor(id notes.NoteID) string {
	return strings.Replace(liveScript, noteMarker, id.String(), 1)
}

// reloadMessage is sent to pages. An empty Note reloads every page.
type reloadMessage struct {
	Action string `json:"action"`
	Note   string `json:"note,omitempty"`
}

// liveHub tracks the websocket connections of open pages.
type liveHub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

func newLiveHub(logger *log.Logger) *liveHub {
	return &liveHub{
		logger: logger,
		// Nil CheckOrigin rejects cross-origin pages.
		upgrader: websocket.Upgrader{},
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and holds the connection until the page
// goes away. Messages from pages are ignored.
func (h *liveHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[Live] Failed to upgrade connection: %v", err)
		return
	}

	if !h.register(conn) {
		_ = conn.Close()
		return
	}
	defer h.unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Printf("[Live] Unexpected close: %v", err)
			}
			return
		}
	}
}

func (h *liveHub) register(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[conn] = struct{}{}
	return true
}

func (h *liveHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		_ = conn.Close()
	}
}

// clients returns the number of connected pages.
func (h *liveHub) clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// broadcast asks pages showing id to reload. An empty id reloads every
// page. Writes are serialized by the hub lock.
func (h *liveHub) broadcast(id notes.NoteID) {
	data, err := json.Marshal(reloadMessage{Action: "reload", Note: id.String()})
	if err != nil {
		h.logger.Printf("[Live] Failed to marshal reload message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.conns) == 0 {
		return
	}

	h.logger.Printf("[Live] Reloading %q on %d page(s)", id, len(h.conns))
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Printf("[Live] Failed to send reload: %v", err)
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

// close disconnects every page and refuses new ones.
func (h *liveHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	deadline := time.Now().Add(time.Second)
	for conn := range h.conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		_ = conn.Close()
		delete(h.conns, conn)
	}
}
