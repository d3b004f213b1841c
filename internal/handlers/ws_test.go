// internal/handlers/ws_test.go
package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorgames/uno-service/internal/game"
)

func dialWS(t *testing.T, ctx context.Context, ts string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: []string{"uno"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "done") })
	return c
}

// readUntil drains events until one of the wanted type arrives.
func readUntil(t *testing.T, ctx context.Context, c *websocket.Conn, want game.GameEventType) game.GameEvent {
	t.Helper()
	for i := 0; i < 50; i++ {
		var ev game.GameEvent
		require.NoError(t, wsjson.Read(ctx, c, &ev))
		if ev.Type == want {
			return ev
		}
	}
	t.Fatalf("no %s event arrived", want)
	return game.GameEvent{}
}

func TestCreateJoinAndStartOverWebsocket(t *testing.T) {
	_, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(t, ctx, ts.URL)
	require.NoError(t, wsjson.Write(ctx, alice, IntentMessage{Type: "create_game", PlayerName: "Alice"}))

	ev := readUntil(t, ctx, alice, game.EventGameStateUpdate)
	require.NotNil(t, ev.State)
	roomCode := ev.State.RoomCode
	require.NotEmpty(t, roomCode)
	require.Len(t, ev.State.Players, 1)
	assert.True(t, ev.State.Players[0].IsHost)
	assert.Equal(t, game.PhaseLobby, ev.State.Phase)

	// Join codes are case-insensitive on the wire.
	bob := dialWS(t, ctx, ts.URL)
	require.NoError(t, wsjson.Write(ctx, bob, IntentMessage{
		Type: "join_game", RoomCode: strings.ToLower(roomCode), PlayerName: "Bob",
	}))

	ev = readUntil(t, ctx, bob, game.EventGameStateUpdate)
	require.NotNil(t, ev.State)
	assert.Equal(t, roomCode, ev.State.RoomCode)
	assert.Len(t, ev.State.Players, 2)

	// The host sees the join too.
	for {
		ev = readUntil(t, ctx, alice, game.EventGameStateUpdate)
		if len(ev.State.Players) == 2 {
			break
		}
	}

	// Only the host can start.
	require.NoError(t, wsjson.Write(ctx, bob, IntentMessage{Type: "start_game"}))
	errEv := readUntil(t, ctx, bob, game.EventGameError)
	assert.Equal(t, "NotHost", errEv.Code)

	require.NoError(t, wsjson.Write(ctx, alice, IntentMessage{Type: "start_game"}))
	for {
		ev = readUntil(t, ctx, bob, game.EventGameStateUpdate)
		if ev.State.GameStarted {
			break
		}
	}
	assert.Equal(t, game.PhaseInProgress, ev.State.Phase)
	require.NotNil(t, ev.State.TopCard)
	for _, p := range ev.State.Players {
		assert.Equal(t, 7, p.HandSize)
	}
	// Bob sees his own cards and only a count for Alice.
	for _, p := range ev.State.Players {
		if p.Name == "Bob" {
			assert.Len(t, p.Hand, 7)
		} else {
			assert.Nil(t, p.Hand)
		}
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	_, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialWS(t, ctx, ts.URL)
	require.NoError(t, wsjson.Write(ctx, c, IntentMessage{
		Type: "join_game", RoomCode: "ZZZZZZ", PlayerName: "Bob",
	}))

	ev := readUntil(t, ctx, c, game.EventGameError)
	assert.Equal(t, "RoomNotFound", ev.Code)
}

func TestIntentBeforeJoiningRejected(t *testing.T) {
	_, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialWS(t, ctx, ts.URL)
	require.NoError(t, wsjson.Write(ctx, c, IntentMessage{Type: "draw_card"}))

	ev := readUntil(t, ctx, c, game.EventGameError)
	assert.Equal(t, "RoomNotFound", ev.Code)
}

func TestPing(t *testing.T) {
	_, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialWS(t, ctx, ts.URL)
	require.NoError(t, wsjson.Write(ctx, c, IntentMessage{Type: "ping"}))

	var ev game.GameEvent
	require.NoError(t, wsjson.Read(ctx, c, &ev))
	assert.Equal(t, game.GameEventType("pong"), ev.Type)
}

func TestMissingSubprotocolRejected(t *testing.T) {
	_, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "done")

	_, _, err = c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusCode(BadSubprotocolError), websocket.CloseStatus(err))
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	gs, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialWS(t, ctx, ts.URL)
	require.NoError(t, wsjson.Write(ctx, c, IntentMessage{Type: "create_game", PlayerName: "Alice"}))
	ev := readUntil(t, ctx, c, game.EventGameStateUpdate)
	roomCode := ev.State.RoomCode

	_, ok := gs.Rooms.GetRoom(roomCode)
	require.True(t, ok)

	require.NoError(t, wsjson.Write(ctx, c, IntentMessage{Type: "player_leave"}))

	require.Eventually(t, func() bool {
		_, ok := gs.Rooms.GetRoom(roomCode)
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "the last human leaving deletes the room")
}
