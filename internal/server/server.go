// Package server exposes the optional control surface: a WebSocket endpoint
// for driving the recorder and streaming waveform/transcript events, plus
// health and metrics routes.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/voicescribe/voicescribe/internal/recorder"
	"github.com/voicescribe/voicescribe/internal/transcribe"
)

const readDeadline = 60 * time.Second

// waveformBuckets is the fixed length of the peak vector sent per tick.
// Clients render it directly; resizing happens here, not in the browser.
const waveformBuckets = 64

type Server struct {
	ctrl     *recorder.Controller
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*wsClient
}

// wsClient serializes writes to one connection. The read loop's acks and the
// broadcast paths (waveform ticks, transcript pushes) run on different
// goroutines, and gorilla/websocket permits only one concurrent writer.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func NewServer(ctrl *recorder.Controller) *Server {
	return &Server{
		ctrl: ctrl,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 4,
		},
		clients: make(map[*websocket.Conn]*wsClient),
	}
}

// Router returns the full control-surface handler.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.Handle)
	return mux
}

// Handle upgrades the connection and serves JSON control messages until the
// peer goes away.
func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(readDeadline)); return nil })

	client := s.addClient(conn)
	defer s.removeClient(conn)

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("ws read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		if mt != websocket.TextMessage {
			continue
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = client.writeJSON(map[string]any{"type": "error", "detail": "invalid json"})
			continue
		}
		switch msg["type"] {
		case "ping":
			_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
			_ = client.writeJSON(map[string]any{"type": "pong", "ts": msg["ts"]})
		case "start":
			if err := s.ctrl.Start(); err != nil {
				_ = client.writeJSON(map[string]any{"type": "error", "detail": err.Error()})
				continue
			}
			_ = client.writeJSON(map[string]any{"type": "started", "status": s.ctrl.Status()})
		case "stop":
			if err := s.ctrl.Stop(); err != nil {
				_ = client.writeJSON(map[string]any{"type": "error", "detail": err.Error()})
				continue
			}
			_ = client.writeJSON(map[string]any{"type": "stopped", "status": s.ctrl.Status()})
		case "toggle":
			if err := s.ctrl.Toggle(); err != nil {
				_ = client.writeJSON(map[string]any{"type": "error", "detail": err.Error()})
				continue
			}
			_ = client.writeJSON(map[string]any{"type": "toggled", "status": s.ctrl.Status()})
		case "status":
			_ = client.writeJSON(map[string]any{"type": "status", "status": s.ctrl.Status()})
		default:
			_ = client.writeJSON(map[string]any{"type": "error", "detail": "unknown message type"})
		}
	}
}

// Update implements waveform.Display: every sampler tick fans a fixed-length
// peak vector out to all connected clients.
func (s *Server) Update(samples []int16) {
	peaks := bucketPeaks(samples, waveformBuckets)
	s.broadcast(map[string]any{"type": "waveform", "peaks": peaks})
}

// PublishResult pushes a finished transcription to all connected clients.
func (s *Server) PublishResult(r transcribe.Result) {
	s.broadcast(map[string]any{
		"type":       "transcript",
		"request_id": r.RequestID,
		"kind":       r.Kind.String(),
		"text":       r.Message(),
	})
}

func (s *Server) addClient(c *websocket.Conn) *wsClient {
	client := &wsClient{conn: c}
	s.mu.Lock()
	s.clients[c] = client
	s.mu.Unlock()
	return client
}

func (s *Server) removeClient(c *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

func (s *Server) broadcast(payload map[string]any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.clients {
		_ = client.writeJSON(payload)
	}
}

// bucketPeaks reduces a chunk to n normalized peak magnitudes in [0,1].
func bucketPeaks(samples []int16, n int) []float64 {
	peaks := make([]float64, n)
	if len(samples) == 0 {
		return peaks
	}
	per := len(samples) / n
	if per < 1 {
		per = 1
	}
	for i := 0; i < n; i++ {
		lo := i * per
		if lo >= len(samples) {
			break
		}
		hi := lo + per
		if hi > len(samples) {
			hi = len(samples)
		}
		var peak int
		for _, v := range samples[lo:hi] {
			a := int(v)
			if a < 0 {
				a = -a
			}
			if a > peak {
				peak = a
			}
		}
		peaks[i] = float64(peak) / 32768.0
	}
	return peaks
}
