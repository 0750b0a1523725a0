package mock

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/live"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/geo"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in mock mode
	},
}

// LocationCreate is the body of a visit submission.
type LocationCreate struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Accuracy     *float64 `json:"accuracy"`
	UserID       *int64   `json:"user_id"`
	StayDuration *int     `json:"stay_duration"`
	VisitType    string   `json:"visit_type"`
	Notes        string   `json:"notes"`
}

// CampaignServer simulates the campaign API: snapshot endpoints, visit
// submission and the location_update push channel.
type CampaignServer struct {
	store   *VisitStore
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	now     func() time.Time
}

// NewCampaignServer creates a server over store.
func NewCampaignServer(store *VisitStore) *CampaignServer {
	return &CampaignServer{
		store:   store,
		clients: make(map[*websocket.Conn]bool),
		now:     time.Now,
	}
}

// Router returns the campaign API routes.
func (s *CampaignServer) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.HandleWebSocket)

	loc := r.PathPrefix("/api/v1/locations").Subrouter()
	loc.HandleFunc("/", s.handleCreateLocation).Methods(http.MethodPost)
	loc.HandleFunc("/heatmap-data", s.handleHeatmapData).Methods(http.MethodGet)
	loc.HandleFunc("/coverage-stats", s.handleCoverageStats).Methods(http.MethodGet)

	return r
}

func (s *CampaignServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Lalganj Campaign Management System API"})
}

func (s *CampaignServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "campaign-api"})
}

func (s *CampaignServer) handleHeatmapData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"heatmap_points": domain.Tuples(s.store.HeatmapPoints()),
	})
}

func (s *CampaignServer) handleCoverageStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.CoverageStats(s.now()))
}

func (s *CampaignServer) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var body LocationCreate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if body.Latitude == nil || body.Longitude == nil || body.UserID == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "latitude, longitude and user_id are required")
		return
	}

	visit := Visit{
		UserID:    *body.UserID,
		Location:  geo.Location{Latitude: *body.Latitude, Longitude: *body.Longitude},
		Accuracy:  body.Accuracy,
		VisitType: body.VisitType,
		Notes:     body.Notes,
	}
	if body.StayDuration != nil {
		visit.StayDuration = *body.StayDuration
	}

	saved, err := s.Record(visit)
	if errors.Is(err, ErrOutsideConstituency) {
		writeDetail(w, http.StatusBadRequest, "Location outside Lalganj constituency")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        saved.ID,
		"latitude":  saved.Location.Latitude,
		"longitude": saved.Location.Longitude,
		"message":   "Location recorded successfully",
	})
}

// ErrOutsideConstituency rejects visits outside the campaign bounds.
var ErrOutsideConstituency = errors.New("location outside Lalganj constituency")

// Record stores a visit and pushes it to every connected feed client.
func (s *CampaignServer) Record(v Visit) (Visit, error) {
	if !geo.CampaignBounds.Contains(v.Location) {
		return Visit{}, ErrOutsideConstituency
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}
	saved := s.store.Add(v)
	s.broadcast(domain.LocationUpdate{
		Latitude:  saved.Location.Latitude,
		Longitude: saved.Location.Longitude,
	})
	return saved, nil
}

// HandleWebSocket handles WebSocket connections
func (s *CampaignServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	n := len(s.clients)
	s.mu.Unlock()
	log.Printf("Mock feed client connected (total: %d)", n)

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		n := len(s.clients)
		s.mu.Unlock()
		conn.Close()
		log.Printf("Mock feed client disconnected (remaining: %d)", n)
	}()

	// Wait for connection to close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// ClientCount returns the number of connected feed clients.
func (s *CampaignServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *CampaignServer) broadcast(update domain.LocationUpdate) {
	data, err := json.Marshal(map[string]interface{}{
		"type":    live.EventLocationUpdate,
		"payload": update,
	})
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// closeAll sends a going-away close to every feed client.
func (s *CampaignServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "mock shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		delete(s.clients, conn)
	}
}

// Serve runs the campaign API on lis until ctx ends.
func (s *CampaignServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Mock campaign API listening on %s", lis.Addr())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
