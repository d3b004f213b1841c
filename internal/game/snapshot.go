// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"

	"github.com/parlorgames/uno-service/internal/models"
)

// SnapshotPlayer is one seat as seen by the requesting player. The viewer's
// own hand is revealed card by card; everyone else is a hand count.
type SnapshotPlayer struct {
	ID            uuid.UUID            `json:"id"`
	Name          string               `json:"name"`
	HandSize      int                  `json:"handSize"`
	Hand          []models.Card        `json:"hand,omitempty"`
	IsHuman       bool                 `json:"isHuman"`
	IsBot         bool                 `json:"isBot"`
	IsHost        bool                 `json:"isHost"`
	CalledUno     bool                 `json:"calledUno"`
	Connected     bool                 `json:"connected"`
	IsCurrentTurn bool                 `json:"isCurrentTurn"`
	Difficulty    models.BotDifficulty `json:"difficulty,omitempty"`
}

// Snapshot is the full room state broadcast after every mutation. Clients
// replace their local state with it wholesale; it is the single source of
// truth, never a delta.
type Snapshot struct {
	RoomCode        string           `json:"roomCode"`
	Phase           Phase            `json:"phase"`
	GameStarted     bool             `json:"gameStarted"`
	Players         []SnapshotPlayer `json:"players"`
	TopCard         *models.Card     `json:"topCard"`
	CurrentColor    models.Color     `json:"currentColor,omitempty"`
	CurrentPlayerID uuid.UUID        `json:"currentPlayerId"`
	CardsRemaining  int              `json:"cardsRemaining"`
	Direction       int              `json:"direction"`
	PendingDraw     int              `json:"pendingDraw,omitempty"`
	Settings        GameSettings     `json:"gameSettings"`
	Scores          map[string]int   `json:"scores"`
}

// SendState pushes a fresh snapshot to a single player, used on join and
// reconnect. Assumes lock is held.
func (r *UnoRoom) SendState(playerID uuid.UUID) {
	snap := r.snapshotFor(playerID)
	r.fireEventToPlayer(playerID, GameEvent{Type: EventGameStateUpdate, State: &snap})
}

// snapshotFor builds the state snapshot from the perspective of forPlayer.
// Assumes lock is held.
func (r *UnoRoom) snapshotFor(forPlayer uuid.UUID) Snapshot {
	snap := Snapshot{
		RoomCode:       r.Code,
		Phase:          r.Phase,
		GameStarted:    r.Phase != PhaseLobby,
		TopCard:        r.TopCard,
		CurrentColor:   r.CurrentColor,
		CardsRemaining: r.Deck.Remaining,
		Direction:      r.Direction,
		PendingDraw:    r.pendingDraw,
		Settings:       r.Settings,
		Scores:         make(map[string]int, len(r.Scores)),
	}
	for name, wins := range r.Scores {
		snap.Scores[name] = wins
	}
	if len(r.Players) > 0 && r.CurrentPlayerIndex >= 0 && r.CurrentPlayerIndex < len(r.Players) {
		snap.CurrentPlayerID = r.Players[r.CurrentPlayerIndex].ID
	}

	for i, p := range r.Players {
		sp := SnapshotPlayer{
			ID:            p.ID,
			Name:          p.Name,
			HandSize:      len(p.Hand),
			IsHuman:       p.IsHuman,
			IsBot:         p.IsBot,
			IsHost:        p.IsHost,
			CalledUno:     p.CalledUno,
			Connected:     p.Connected,
			IsCurrentTurn: r.Phase == PhaseInProgress && i == r.CurrentPlayerIndex,
			Difficulty:    p.Difficulty,
		}
		if p.ID == forPlayer {
			sp.Hand = make([]models.Card, len(p.Hand))
			copy(sp.Hand, p.Hand)
		}
		snap.Players = append(snap.Players, sp)
	}
	return snap
}
