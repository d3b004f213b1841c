// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/parlorgames/uno-service/internal/game"
	"github.com/parlorgames/uno-service/internal/middleware"
	"github.com/parlorgames/uno-service/internal/models"
)

// IntentMessage is the single inbound envelope. Type selects the intent; the
// other fields are populated as each intent requires.
type IntentMessage struct {
	Type string `json:"type"`

	RoomCode   string `json:"roomCode,omitempty"`
	PlayerName string `json:"playerName,omitempty"`

	CardID int    `json:"cardId,omitempty"`
	Color  string `json:"color,omitempty"`

	TargetPlayerID string `json:"targetPlayerId,omitempty"`
	BotID          string `json:"botId,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`

	Settings map[string]interface{} `json:"settings,omitempty"`

	Message string `json:"message,omitempty"`
	Emoji   string `json:"emoji,omitempty"`
}

// session is one websocket connection mapped 1:1 to at most one player in at
// most one room. Outbound events go through a buffered channel drained by a
// writer goroutine so broadcasts never block room mutation.
type session struct {
	conn *websocket.Conn
	out  chan game.GameEvent

	room     *game.UnoRoom
	playerID uuid.UUID
	bound    bool
}

// send queues an event non-blockingly; a full or closed channel drops the
// event and the client resyncs from the next full snapshot.
func (s *session) send(ev game.GameEvent) {
	select {
	case s.out <- ev:
	default:
	}
}

// writePump drains the outbound channel onto the socket with a per-write
// timeout.
func (s *session) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.out:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = s.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// WSHandler upgrades the connection and runs the intent read loop. A session
// starts unbound; create_game or join_game binds it to a player in a room.
func (gs *GameServer) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"uno"},
			OriginPatterns: gs.originPatterns,
		})
		if err != nil {
			gs.logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal server error")

		if c.Subprotocol() != "uno" {
			c.Close(BadSubprotocolError, "client must use the 'uno' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(gs.logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sess := &session{conn: c, out: make(chan game.GameEvent, 64)}
		go sess.writePump(ctx)

		gs.readIntents(ctx, sess)

		// Read loop exited: treat as player_leave if the session was bound.
		if sess.bound {
			sess.room.Mu.Lock()
			sess.room.HandleLeave(sess.playerID)
			sess.room.Mu.Unlock()
			gs.unregisterSession(sess.playerID, sess)
		}
		middleware.LogWebSocketDisconnect(gs.logger, r.RemoteAddr, r.URL.Path, nil)
		c.Close(websocket.StatusNormalClosure, "bye")
	}
}

// readIntents reads, validates, and routes inbound intents until the
// connection closes. Validation violations answer with game_error and leave
// room state untouched; they never crash the room.
func (gs *GameServer) readIntents(ctx context.Context, sess *session) {
	for {
		msgType, data, err := sess.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway &&
				!strings.Contains(err.Error(), "context canceled") {
				gs.logger.Warnf("websocket read error: %v", err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg IntentMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.send(game.GameEvent{Type: game.EventGameError, Code: "GameError", Message: "invalid JSON"})
			continue
		}
		gs.logger.Debugf("intent %q from session (bound=%v)", msg.Type, sess.bound)

		switch msg.Type {
		case "create_game":
			gs.handleCreateGame(sess, msg)
		case "join_game":
			gs.handleJoinGame(sess, msg)
		case "ping":
			sess.send(game.GameEvent{Type: "pong"})
		default:
			gs.handleRoomIntent(sess, msg)
		}
	}
}

// handleCreateGame spins up a room with the sender as host.
func (gs *GameServer) handleCreateGame(sess *session, msg IntentMessage) {
	if sess.bound {
		gs.sendError(sess, fmt.Errorf("already in a room"))
		return
	}
	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		gs.sendError(sess, fmt.Errorf("playerName is required"))
		return
	}

	room := gs.Rooms.CreateRoom()
	room.Mu.Lock()
	defer room.Mu.Unlock()
	room.BroadcastToPlayerFn = gs.sendToPlayer
	room.SetBotDelay(gs.botDelay)

	p, err := room.AddHuman(name, sess.conn)
	if err != nil {
		gs.sendError(sess, err)
		return
	}
	gs.bindSession(sess, room, p.ID)
	room.SendState(p.ID)
}

// handleJoinGame seats the sender in an existing room.
func (gs *GameServer) handleJoinGame(sess *session, msg IntentMessage) {
	if sess.bound {
		gs.sendError(sess, fmt.Errorf("already in a room"))
		return
	}
	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		gs.sendError(sess, fmt.Errorf("playerName is required"))
		return
	}
	room, ok := gs.Rooms.GetRoom(strings.ToUpper(strings.TrimSpace(msg.RoomCode)))
	if !ok {
		gs.sendError(sess, game.ErrRoomNotFound)
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	p, err := room.AddHuman(name, sess.conn)
	if err != nil {
		gs.sendError(sess, err)
		return
	}
	gs.bindSession(sess, room, p.ID)
	room.SendState(p.ID)
}

// bindSession links the session to its player and registers it for
// broadcasts. Called with the room lock held.
func (gs *GameServer) bindSession(sess *session, room *game.UnoRoom, playerID uuid.UUID) {
	sess.room = room
	sess.playerID = playerID
	sess.bound = true
	gs.registerSession(playerID, sess)
}

// handleRoomIntent routes every room-bound intent under the room lock, so
// each intent runs to completion before the next one for that room.
func (gs *GameServer) handleRoomIntent(sess *session, msg IntentMessage) {
	if !sess.bound {
		gs.sendError(sess, game.ErrRoomNotFound)
		return
	}
	room := sess.room
	pid := sess.playerID

	room.Mu.Lock()
	defer room.Mu.Unlock()

	var err error
	switch msg.Type {
	case "start_game":
		err = room.StartGame(pid)
	case "play_again":
		err = room.PlayAgain(pid)
	case "play_card":
		err = room.PlayCard(pid, msg.CardID)
	case "select_color":
		err = room.SelectColor(pid, msg.CardID, models.Color(msg.Color))
	case "draw_card":
		err = room.DrawCard(pid)
	case "end_turn":
		err = room.EndTurn(pid)
	case "call_uno":
		err = room.CallUno(pid)
	case "call_uno_on_player":
		var target uuid.UUID
		target, err = uuid.Parse(msg.TargetPlayerID)
		if err != nil {
			err = game.ErrInvalidUnoCall
			break
		}
		err = room.CallUnoOnPlayer(pid, target)
	case "update_game_settings":
		err = room.UpdateSettings(pid, msg.Settings)
	case "add_bot":
		_, err = room.AddBot(pid, models.BotDifficulty(msg.Difficulty))
	case "remove_bot":
		var botID uuid.UUID
		botID, err = uuid.Parse(msg.BotID)
		if err != nil {
			err = game.ErrInvalidCard
			break
		}
		err = room.RemoveBot(pid, botID)
	case "trigger_bot_turn":
		err = room.TriggerBotTurn(pid)
	case "send_chat_message":
		room.Chat(pid, msg.Message)
	case "send_emoji":
		room.Emoji(pid, msg.Emoji)
	case "player_leave":
		room.HandleLeave(pid)
		gs.unregisterSession(pid, sess)
		sess.room = nil
		sess.bound = false
	default:
		err = fmt.Errorf("unknown intent type: %s", msg.Type)
	}

	if err != nil {
		gs.sendError(sess, err)
	}
}

// sendError answers a rejected intent with a game_error event.
func (gs *GameServer) sendError(sess *session, err error) {
	sess.send(game.GameEvent{
		Type:    game.EventGameError,
		Code:    game.ErrorCode(err),
		Message: err.Error(),
	})
}
