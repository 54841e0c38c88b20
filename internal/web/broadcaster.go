package web

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// StatusEvent is one message pushed to monitor clients. Log lines carry
// Msg; telemetry updates carry Telemetry and level "telemetry".
type StatusEvent struct {
	Time      string         `json:"t"`
	Level     string         `json:"l,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Telemetry *TelemetryView `json:"telemetry,omitempty"`
}

// LevelTelemetry marks telemetry events.
const LevelTelemetry = "telemetry"

// subscriberBuffer is the per-client queue length.
const subscriberBuffer = 64

// StatusBroadcaster distributes events to every SSE and websocket client.
type StatusBroadcaster struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

// NewStatusBroadcaster creates a new broadcaster.
func NewStatusBroadcaster() *StatusBroadcaster {
	return &StatusBroadcaster{
		clients: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives broadcast messages and a cleanup function.
// The caller must call the returned cleanup when done (e.g. on client disconnect).
func (b *StatusBroadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, subscriberBuffer)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.clients, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}

// Clients returns the number of subscribers.
func (b *StatusBroadcaster) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Publish sends evt as JSON to all subscribed clients. A client whose
// queue is full misses the event.
func (b *StatusBroadcaster) Publish(evt StatusEvent) {
	if evt.Time == "" {
		evt.Time = time.Now().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	payload := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
			// channel full, skip
		}
	}
}

// Broadcast sends a log line: {"t":"...","l":"info","msg":"..."}.
func (b *StatusBroadcaster) Broadcast(level, msg string) {
	b.Publish(StatusEvent{Level: level, Msg: msg})
}

// BroadcastMsg is a convenience for level "info".
func (b *StatusBroadcaster) BroadcastMsg(msg string) {
	b.Broadcast("info", msg)
}

// BroadcastTelemetry sends a telemetry update.
func (b *StatusBroadcaster) BroadcastTelemetry(v TelemetryView) {
	b.Publish(StatusEvent{Level: LevelTelemetry, Telemetry: &v})
}

// BroadcastWriter implements io.Writer; each Write broadcasts the content to clients.
func BroadcastWriter(b *StatusBroadcaster) *broadcastWriter {
	return &broadcastWriter{b: b}
}

// broadcastWriter wraps StatusBroadcaster as io.Writer for use with debug.SetOutput.
type broadcastWriter struct {
	b *StatusBroadcaster
}

func (w *broadcastWriter) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(string(p), "\n") {
		if msg := strings.TrimSpace(line); msg != "" {
			w.b.BroadcastMsg(msg)
		}
	}
	return len(p), nil
}
