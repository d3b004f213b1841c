// internal/game/store.go
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const roomCodeLength = 6

// Ambiguous characters (0/O, 1/I) are left out of join codes.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomStore manages active rooms in memory, keyed by room code. State lives
// only for the life of the process; there is no persistence layer.
type RoomStore struct {
	mu     sync.Mutex
	rooms  map[string]*UnoRoom
	rng    *rand.Rand
	logger *logrus.Logger
}

// NewRoomStore initializes an empty in-memory store.
func NewRoomStore(logger *logrus.Logger) *RoomStore {
	return &RoomStore{
		rooms:  make(map[string]*UnoRoom),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

// CreateRoom builds a room under a fresh join code and registers it. The
// room's OnEmpty callback deletes it from the store once the last human
// leaves.
func (s *RoomStore) CreateRoom() *UnoRoom {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.generateCode()
	for _, taken := s.rooms[code]; taken; _, taken = s.rooms[code] {
		code = s.generateCode()
	}

	room := NewUnoRoom(code, s.logger)
	room.OnEmpty = func(roomCode string) {
		// Called with the room lock held; deletion only touches the store.
		s.DeleteRoom(roomCode)
	}
	s.rooms[code] = room
	s.logger.WithField("room", code).Info("room created")
	return room
}

// GetRoom retrieves a room by its code.
func (s *RoomStore) GetRoom(code string) (*UnoRoom, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

// DeleteRoom removes a room from the store.
func (s *RoomStore) DeleteRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; ok {
		delete(s.rooms, code)
		s.logger.WithField("room", code).Info("room deleted")
	}
}

// RoomInfo is the public listing entry for a room.
type RoomInfo struct {
	RoomCode    string `json:"roomCode"`
	Players     int    `json:"players"`
	Phase       Phase  `json:"phase"`
	GameStarted bool   `json:"gameStarted"`
}

// ListRooms returns a point-in-time listing of all rooms.
func (s *RoomStore) ListRooms() []RoomInfo {
	s.mu.Lock()
	rooms := make([]*UnoRoom, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		r.Mu.Lock()
		infos = append(infos, RoomInfo{
			RoomCode:    r.Code,
			Players:     len(r.Players),
			Phase:       r.Phase,
			GameStarted: r.Phase != PhaseLobby,
		})
		r.Mu.Unlock()
	}
	return infos
}

func (s *RoomStore) generateCode() string {
	b := make([]byte, roomCodeLength)
	for i := range b {
		b[i] = roomCodeAlphabet[s.rng.Intn(len(roomCodeAlphabet))]
	}
	return string(b)
}
