// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"github.com/parlorgames/uno-service/internal/models"
)

// GameEventType is an enum-like type for outbound events.
type GameEventType string

const (
	EventGameStateUpdate  GameEventType = "game_state_update"   // full snapshot for one recipient
	EventGameLog          GameEventType = "game_log"            // human-readable action line
	EventUnoCalled        GameEventType = "uno_called"          // a player announced UNO
	EventGameWinner       GameEventType = "game_winner"         // round is over
	EventEmojiReaction    GameEventType = "emoji_reaction"      // relayed emoji
	EventSelectColor      GameEventType = "select_color"        // server asks the acting player to choose
	EventCanPlayDrawnCard GameEventType = "can_play_drawn_card" // drawn card is playable
	EventDrawAgain        GameEventType = "draw_again"          // drawUntilMatch: keep drawing
	EventChatMessage      GameEventType = "chat_message"        // relayed chat
	EventGameError        GameEventType = "game_error"          // rejected intent
)

// GameEvent is the single outbound envelope. Every successful mutation is
// followed by a per-recipient game_state_update plus a game_log line; the
// other event types carry their specific fields.
type GameEvent struct {
	Type GameEventType `json:"type"`

	State *Snapshot `json:"state,omitempty"`

	PlayerID   *uuid.UUID   `json:"playerId,omitempty"`
	PlayerName string       `json:"playerName,omitempty"`
	Card       *models.Card `json:"card,omitempty"`

	Message string `json:"message,omitempty"`
	Emoji   string `json:"emoji,omitempty"`

	// Code identifies the error taxonomy member on game_error events.
	Code string `json:"code,omitempty"`
}
