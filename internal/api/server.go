package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"gallery/internal/match"
	"gallery/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
)

// LiveSource exposes the match currently being played, if any
type LiveSource interface {
	CurrentMatch() *match.Match
}

// Server is the read-only history API and spectator feed
type Server struct {
	store       *store.Store
	live        LiveSource
	hub         *Hub
	rateLimiter *RateLimiter
	upgrader    websocket.Upgrader
	corsOrigins []string // Allowed CORS origins (empty = allow all)
}

// NewServer creates a server over st. live may be nil.
func NewServer(st *store.Store, live LiveSource) *Server {
	s := &Server{
		store: st,
		live:  live,
		hub:   NewHub(),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return s.checkCORSOrigin(r.Header.Get("Origin"))
		},
	}
	return s
}

// SetCORSOrigins sets the allowed CORS origins.
// Pass an empty slice to allow all origins (default, for development).
func (s *Server) SetCORSOrigins(origins []string) {
	s.corsOrigins = origins
}

// SetRateLimit limits /api requests per client IP. A limit of 0 disables it.
func (s *Server) SetRateLimit(limit int, window time.Duration) {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.rateLimiter = nil
	}
	if limit > 0 {
		s.rateLimiter = NewRateLimiter(limit, window)
	}
}

// checkCORSOrigin checks if an origin is allowed
func (s *Server) checkCORSOrigin(origin string) bool {
	if len(s.corsOrigins) == 0 {
		return true
	}
	// Empty origin header = same-origin request, always allow
	if origin == "" {
		return true
	}
	for _, allowed := range s.corsOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	allowedOrigins := s.corsOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		if s.rateLimiter != nil {
			r.Use(s.rateLimiter.Middleware)
		}

		r.Get("/health", s.handleHealth)
		r.Get("/live", s.handleLive)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/players/{name}", s.handlePlayer)

		r.Get("/matches", s.handleMatches)
		r.Route("/matches/{id}", func(r chi.Router) {
			r.Get("/", s.handleMatch)
			r.Get("/sales", s.handleSales)
			r.Get("/values", s.handleValues)
			r.Get("/snapshot", s.handleSnapshot)
		})
	})

	r.Get("/ws", s.handleWebSocket)

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] encode response: %v", err)
	}
}

// writeStoreError maps a store error to a status code
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	log.Printf("[API] store error: %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func queryLimit(r *http.Request, def, ceiling int) int {
	limit := def
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	return min(limit, ceiling)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":     "ok",
		"spectators": s.hub.Count(),
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	var m *match.Match
	if s.live != nil {
		m = s.live.CurrentMatch()
	}
	if m == nil {
		http.Error(w, "no match in play", http.StatusNotFound)
		return
	}
	writeJSON(w, m.Snapshot())
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.store.GetRecentMatches(queryLimit(r, 20, 100))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if matches == nil {
		matches = []store.MatchRecord{}
	}
	writeJSON(w, matches)
}

// MatchDetail is a stored match with its final standings
type MatchDetail struct {
	Match   *store.MatchRecord  `json:"match"`
	Results []store.MatchResult `json:"results"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := s.store.GetMatch(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	results, err := s.store.GetMatchResults(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, MatchDetail{Match: m, Results: results})
}

func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetMatch(id); err != nil {
		writeStoreError(w, err)
		return
	}
	sales, err := s.store.GetSales(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sales == nil {
		sales = []store.SaleRecord{}
	}
	writeJSON(w, sales)
}

func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetMatch(id); err != nil {
		writeStoreError(w, err)
		return
	}
	values, err := s.store.GetRoundValues(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, values)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.GetSnapshot(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.store.GetLeaderboard(queryLimit(r, 10, 100))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if board == nil {
		board = []store.PlayerStats{}
	}
	writeJSON(w, board)
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetPlayerStats(chi.URLParam(r, "name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, stats)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	// Queue the live state so spectators joining mid-match can catch up
	if s.live != nil {
		if m := s.live.CurrentMatch(); m != nil {
			data, err := json.Marshal(map[string]any{
				"type":     "snapshot",
				"snapshot": m.Snapshot(),
			})
			if err == nil {
				client.send <- data
			}
		}
	}
	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// BroadcastEvent pushes a match event to every spectator
func (s *Server) BroadcastEvent(e match.Event) {
	s.hub.Broadcast(map[string]any{
		"type":  "event",
		"event": e,
	})
}

// Shutdown stops internal goroutines and disconnects spectators
func (s *Server) Shutdown() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.hub.Stop()
}
