// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game handler. These provide more
// specific reasons for closure than the standard codes.
const (
	BadSubprotocolError = 3000 // client connected with an unsupported subprotocol
	InvalidRoomError    = 3001 // target room does not exist or is invalid
)
