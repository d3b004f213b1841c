// internal/handlers/server.go
package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parlorgames/uno-service/internal/config"
	"github.com/parlorgames/uno-service/internal/game"
	"github.com/parlorgames/uno-service/internal/middleware"
)

// GameServer holds the room store and the live session registry. Rooms own
// their game state; the server owns the mapping from player ids to sockets.
type GameServer struct {
	Rooms  *game.RoomStore
	logger *logrus.Logger

	botDelay       time.Duration
	originPatterns []string

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewGameServer wires a server from config.
func NewGameServer(logger *logrus.Logger, cfg config.Config) *GameServer {
	return &GameServer{
		Rooms:          game.NewRoomStore(logger),
		logger:         logger,
		botDelay:       cfg.BotDelay,
		originPatterns: cfg.OriginPatterns,
		sessions:       make(map[uuid.UUID]*session),
	}
}

// Routes builds the HTTP surface: the game websocket plus a small read-only
// REST listing.
func (gs *GameServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.LogMiddleware(gs.logger))
	r.Get("/healthz", gs.healthzHandler)
	r.Get("/rooms", gs.listRoomsHandler)
	r.Get("/ws", gs.WSHandler())
	return r
}

func (gs *GameServer) healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (gs *GameServer) listRoomsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(gs.Rooms.ListRooms()); err != nil {
		gs.logger.Warnf("failed to encode room listing: %v", err)
	}
}

// registerSession binds a player id to a live session.
func (gs *GameServer) registerSession(playerID uuid.UUID, s *session) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.sessions[playerID] = s
}

// unregisterSession drops the binding if it still points at s.
func (gs *GameServer) unregisterSession(playerID uuid.UUID, s *session) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.sessions[playerID] == s {
		delete(gs.sessions, playerID)
	}
}

// sendToPlayer is injected into every room as BroadcastToPlayerFn. It queues
// the event on the recipient's outbound channel; bots and departed players
// have no session and are skipped. Called with the room lock held, so it must
// never block.
func (gs *GameServer) sendToPlayer(playerID uuid.UUID, ev game.GameEvent) {
	gs.mu.Lock()
	s := gs.sessions[playerID]
	gs.mu.Unlock()
	if s == nil {
		return
	}
	s.send(ev)
}
