package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/web/display"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
	"github.com/lcalzada-xor/campaign-heatmap/internal/telemetry"
)

// Browser message types.
const (
	TypeState       = "state"
	TypeLayerAdd    = "layer:add"
	TypeLayerRemove = "layer:remove"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many messages a browser may fall behind before it
	// is disconnected.
	sendBuffer = 32
)

var (
	_ ports.MapView       = (*WSManager)(nil)
	_ ports.StateListener = (*WSManager)(nil)
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header and those whose
// origin host matches the requested host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	slog.Warn("WebSocket: rejected origin", "origin", origin)
	return false
}

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// StatePayload is the header-level state pushed on every change. Points
// travel with layer messages.
type StatePayload struct {
	Version    uint64               `json:"version"`
	Stats      domain.CoverageStats `json:"stats"`
	View       domain.ViewState     `json:"view"`
	Header     display.Header       `json:"header"`
	Loading    string               `json:"loading_text,omitempty"`
	PointCount int                  `json:"point_count"`
}

// NewStatePayload formats state for browsers.
func NewStatePayload(state domain.DashboardState, loc *time.Location) StatePayload {
	p := StatePayload{
		Version:    state.Version,
		Stats:      state.Stats,
		View:       state.View,
		Header:     display.NewHeader(state.Stats, state.View.LastUpdate, loc),
		PointCount: len(state.Points),
	}
	if state.View.IsLoading {
		p.Loading = display.LoadingText
	}
	return p
}

// client owns one browser connection. Only its write pump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// WSManager is the browser-side map view: it mirrors the installed heat
// overlay and the dashboard header to every connected page.
type WSManager struct {
	Clients  map[*websocket.Conn]*client
	location *time.Location
	buffer   int
	mu       sync.Mutex

	layer   *domain.HeatLayer
	state   *StatePayload
	version uint64
}

// NewWSManager creates a manager formatting times in loc.
func NewWSManager(loc *time.Location) *WSManager {
	if loc == nil {
		loc = time.UTC
	}
	return &WSManager{
		Clients:  make(map[*websocket.Conn]*client),
		location: loc,
		buffer:   sendBuffer,
	}
}

// Start closes every client connection once ctx ends.
func (m *WSManager) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		m.closeAll()
	}()
}

// HandleWebSocket upgrades the request and replays the current overlay and
// header so a fresh page starts in sync.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, m.buffer)}

	m.mu.Lock()
	m.Clients[conn] = c
	if m.state != nil {
		m.enqueueLocked(c, WSMessage{Type: TypeState, Payload: *m.state})
	}
	if m.layer != nil {
		m.enqueueLocked(c, WSMessage{Type: TypeLayerAdd, Payload: *m.layer})
	}
	telemetry.BrowserClients.Set(float64(len(m.Clients)))
	m.mu.Unlock()

	slog.Debug("WebSocket connected", "remote", r.RemoteAddr)

	go c.writePump()
	go func() {
		defer m.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// AddLayer implements ports.MapView.
func (m *WSManager) AddLayer(layer domain.HeatLayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layer = &layer
	m.broadcastLocked(WSMessage{Type: TypeLayerAdd, Payload: layer})
	return nil
}

// RemoveLayer implements ports.MapView.
func (m *WSManager) RemoveLayer(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.layer != nil && m.layer.ID == id {
		m.layer = nil
	}
	m.broadcastLocked(WSMessage{Type: TypeLayerRemove, Payload: map[string]string{"id": id}})
	return nil
}

// OnStateChange implements ports.StateListener. A state older than the one
// already held is ignored.
func (m *WSManager) OnStateChange(state domain.DashboardState) {
	payload := NewStatePayload(state, m.location)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil && state.Version < m.version {
		return
	}
	m.version = state.Version
	m.state = &payload
	m.broadcastLocked(WSMessage{Type: TypeState, Payload: payload})
}

// CurrentState returns the header state browsers were last sent, if any.
func (m *WSManager) CurrentState() *StatePayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil
	}
	s := *m.state
	return &s
}

// CurrentLayer returns the overlay browsers are showing, if any.
func (m *WSManager) CurrentLayer() *domain.HeatLayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.layer == nil {
		return nil
	}
	l := *m.layer
	return &l
}

// ClientCount returns the number of connected browsers.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Clients)
}

func (m *WSManager) broadcastLocked(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("WebSocket marshal failed", "type", msg.Type, "error", err)
		return
	}
	for _, c := range m.Clients {
		m.sendLocked(c, data)
	}
	telemetry.BrowserClients.Set(float64(len(m.Clients)))
}

func (m *WSManager) enqueueLocked(c *client, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("WebSocket marshal failed", "type", msg.Type, "error", err)
		return
	}
	m.sendLocked(c, data)
}

// sendLocked never blocks: a browser whose queue is full is disconnected
// and gets the current state replayed when it reconnects.
func (m *WSManager) sendLocked(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("WebSocket client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
		m.removeLocked(c.conn)
	}
}

func (m *WSManager) removeLocked(conn *websocket.Conn) {
	c, ok := m.Clients[conn]
	if !ok {
		return
	}
	delete(m.Clients, conn)
	close(c.send)
	conn.Close()
}

func (c *client) writePump() {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Debug("WebSocket write failed", "error", err)
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}

func (m *WSManager) drop(conn *websocket.Conn) {
	m.mu.Lock()
	m.removeLocked(conn)
	telemetry.BrowserClients.Set(float64(len(m.Clients)))
	m.mu.Unlock()
}

func (m *WSManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		m.removeLocked(conn)
	}
	telemetry.BrowserClients.Set(0)
}
