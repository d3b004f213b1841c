// internal/models/player.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// BotDifficulty selects the heuristic tier used when the orchestrator resolves
// a bot's turn.
type BotDifficulty string

const (
	BotEasy   BotDifficulty = "easy"
	BotMedium BotDifficulty = "medium"
	BotHard   BotDifficulty = "hard"
)

// Player is one seat in a room. Order of the room's player slice defines turn
// sequence. Hand order is display-only and carries no rule meaning.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Hand      []Card    `json:"-"`
	IsHuman   bool      `json:"isHuman"`
	IsBot     bool      `json:"isBot"`
	IsHost    bool      `json:"isHost"`
	CalledUno bool      `json:"calledUno"`

	// Difficulty is only meaningful when IsBot is set.
	Difficulty BotDifficulty `json:"difficulty,omitempty"`

	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`

	// DrawnCardID is the id of the card drawn this turn that may still be
	// played under the playDrawnCard rule, or -1 when none is pending.
	DrawnCardID int `json:"-"`

	// HasDrawn marks that the player already drew this turn, gating end_turn.
	HasDrawn bool `json:"-"`
}

// HasCard reports whether the player's hand contains the card id and returns
// its position, or -1.
func (p *Player) HasCard(cardID int) int {
	for i, c := range p.Hand {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}
