package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"driftwatch/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// liveMessage is the wire format for the /live feed, one message per
// classified sample. Score is null when the window could not produce one.
type liveMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	StreamID  string    `json:"stream_id"`
	Seq       uint64    `json:"seq"`
	Value     float64   `json:"value"`
	Anomaly   bool      `json:"anomaly"`
	Score     *float64  `json:"score"`
}

// LiveHub fans classification results out to websocket subscribers. Slow
// clients fall behind and drop messages; they never stall the engine.
type LiveHub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan liveMessage
	nextID uint64
	buffer int
	logger *slog.Logger
}

func NewLiveHub(buffer int, logger *slog.Logger) *LiveHub {
	if buffer <= 0 {
		buffer = 256
	}
	return &LiveHub{
		subs:   make(map[uint64]chan liveMessage),
		buffer: buffer,
		logger: logger,
	}
}

// Publish implements the engine's publisher hook.
func (h *LiveHub) Publish(streamID string, seq uint64, c model.Classification) {
	msg := liveMessage{
		Type:      "sample",
		Timestamp: time.Now().UTC(),
		StreamID:  streamID,
		Seq:       seq,
		Value:     c.Value,
		Anomaly:   c.Anomaly,
	}
	if c.Scored {
		score := c.Score
		msg.Score = &score
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *LiveHub) subscribe() (uint64, chan liveMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan liveMessage, h.buffer)
	h.subs[h.nextID] = ch
	return h.nextID, ch
}

func (h *LiveHub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// Count returns the number of connected subscribers.
func (h *LiveHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *LiveHub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, ch := h.subscribe()
		defer h.unsubscribe(id)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg := <-ch:
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					if h.logger != nil {
						h.logger.Debug("live feed write error", "err", err)
					}
					return
				}
			case <-done:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
