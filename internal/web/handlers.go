package web

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cjeanneret/OrniPad/internal/debug"
)

const (
	heartbeatInterval = 30 * time.Second
	wsWriteWait       = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  256,
	WriteBufferSize: 1024,
	// The monitor is read-only and served on the local network.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Source      SnapshotSource
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
func NewHandlers(broadcaster *StatusBroadcaster, source SnapshotSource, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Source:      source,
		staticFS:    staticFS,
	}
}

// HandleTelemetry returns the current state as JSON.
func (h *Handlers) HandleTelemetry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(ViewOf(h.Source))
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// initialEvent is the first message a new client gets, so it does not
// wait for the next change.
func (h *Handlers) initialEvent() string {
	v := ViewOf(h.Source)
	data, _ := json.Marshal(StatusEvent{
		Time:      time.Now().Format(time.RFC3339Nano),
		Level:     LevelTelemetry,
		Telemetry: &v,
	})
	return string(data)
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	w.Write([]byte("data: " + h.initialEvent() + "\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// HandleWebSocket handles GET /ws: the same event stream as SSE, one
// JSON text message per event. Messages from the browser are ignored.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		debug.Verbose("websocket upgrade: %v", err)
		return
	}
	defer ws.Close()

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Reader: only detects the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg string) error {
		ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return ws.WriteMessage(websocket.TextMessage, []byte(msg))
	}
	if err := write(h.initialEvent()); err != nil {
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := write(msg); err != nil {
				debug.Verbose("websocket write: %v", err)
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
