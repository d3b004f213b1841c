// internal/game/errors.go
package game

import "errors"

// Every member of the error taxonomy is recoverable: a violating intent is
// rejected at the transport boundary and room state is left untouched.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrInvalidCard        = errors.New("invalid card")
	ErrNotHost            = errors.New("only the host can do that")
	ErrInvalidUnoCall     = errors.New("invalid uno call")
)

// ErrorCode maps a taxonomy error to its wire code for game_error events.
// Unknown errors map to a generic code rather than crashing the room.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "RoomNotFound"
	case errors.Is(err, ErrGameAlreadyStarted):
		return "GameAlreadyStarted"
	case errors.Is(err, ErrNotYourTurn):
		return "NotYourTurn"
	case errors.Is(err, ErrInvalidCard):
		return "InvalidCard"
	case errors.Is(err, ErrNotHost):
		return "NotHost"
	case errors.Is(err, ErrInvalidUnoCall):
		return "InvalidUnoCall"
	default:
		return "GameError"
	}
}
