package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/EricJeffrey/WebsocketGomoku/internal/game"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := NewWsServer(game.NewRegistry(10, 10), NewOutbox(64), 10*time.Millisecond)
	engine := gin.New()
	engine.GET("/ws", srv.Handle)

	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)
	return ts
}

func dialWs(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendCmd(t *testing.T, conn *websocket.Conn, fields ...string) {
	t.Helper()
	err := conn.WriteMessage(websocket.TextMessage, []byte(strings.Join(fields, "\n")))
	require.NoError(t, err)
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// awaitFrame reads frames until pred matches, skipping unrelated ones.
// Direct replies and broadcasts have no relative ordering guarantee, so
// tests select what they assert on.
func awaitFrame(t *testing.T, conn *websocket.Conn, pred func(map[string]any) bool) map[string]any {
	t.Helper()
	for i := 0; i < 32; i++ {
		msg := readFrame(t, conn)
		if pred(msg) {
			return msg
		}
	}
	t.Fatal("expected frame never arrived")
	return nil
}

func isReply(verb string) func(map[string]any) bool {
	return func(m map[string]any) bool { return m["type"] == verb }
}

func isBroadcast(event string) func(map[string]any) bool {
	return func(m map[string]any) bool { return m["msg_others"] == event }
}

func TestServer_HandshakeAssignsMonotonicIds(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	a := dialWs(t, ts)
	b := dialWs(t, ts)

	msgA := awaitFrame(t, a, isReply(TypeYourID))
	req.Equal(true, msgA["ok"])
	idA := msgA["data"].(map[string]any)["id"].(float64)

	msgB := awaitFrame(t, b, isReply(TypeYourID))
	idB := msgB["data"].(map[string]any)["id"].(float64)

	req.Greater(idB, idA)
}

func TestServer_GameSession(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	a := dialWs(t, ts)
	idA := awaitFrame(t, a, isReply(TypeYourID))["data"].(map[string]any)["id"].(float64)
	b := dialWs(t, ts)
	idB := awaitFrame(t, b, isReply(TypeYourID))["data"].(map[string]any)["id"].(float64)
	aID := int(idA)
	bID := int(idB)

	// --- create_room: creator reply + room_list broadcast to everyone
	sendCmd(t, a, "create_room", "alpha")

	reply := awaitFrame(t, a, isReply("create_room"))
	req.Equal(true, reply["ok"])
	room := reply["data"].(map[string]any)["room"].(map[string]any)
	req.Equal("alpha", room["name"])
	roomID := int(room["id"].(float64))

	for _, conn := range []*websocket.Conn{a, b} {
		list := awaitFrame(t, conn, isBroadcast(EventRoomList))["data"].([]any)
		req.Len(list, 1)
	}

	// --- seat assignment: A seat 0, then B seat 1
	sendCmd(t, a, "enter_room", itoa(aID), itoa(roomID))
	enterA := awaitFrame(t, a, isReply("enter_room"))
	req.Equal(true, enterA["ok"])

	sendCmd(t, b, "enter_room", itoa(bID), itoa(roomID))
	enterB := awaitFrame(t, b, isReply("enter_room"))
	seats := enterB["data"].(map[string]any)["game_players"].(map[string]any)
	req.Equal(float64(0), seats[itoa(aID)])
	req.Equal(float64(1), seats[itoa(bID)])

	// A sees B's entry with seat code 1
	evt := awaitFrame(t, a, func(m map[string]any) bool {
		if m["msg_others"] != EventEnterRoom {
			return false
		}
		return m["data"].(map[string]any)["player_id"] == float64(bID)
	})["data"].(map[string]any)
	req.Equal(float64(1), evt["player_type"])

	// --- put_piece reaches both members
	sendCmd(t, a, "put_piece", itoa(roomID), "3", "4", "0")
	req.Equal(true, awaitFrame(t, a, isReply("put_piece"))["ok"])

	for _, conn := range []*websocket.Conn{a, b} {
		put := awaitFrame(t, conn, isBroadcast(EventPutPiece))["data"].(map[string]any)
		req.Equal(float64(3), put["row_i"])
		req.Equal(float64(4), put["col_j"])
		req.Equal(float64(0), put["piece_type"])
	}

	// --- out-of-bounds put is rejected with no broadcast
	sendCmd(t, a, "put_piece", itoa(roomID), "10", "0", "0")
	rejected := awaitFrame(t, a, isReply("put_piece"))
	req.Equal(false, rejected["ok"])
	req.Equal("no data", rejected["data"])

	// --- exit broadcast carries the vacated seat and reaches the leaver
	sendCmd(t, a, "exit_room", itoa(aID), itoa(roomID))
	exit := awaitFrame(t, a, isBroadcast(EventExitRoom))["data"].(map[string]any)
	req.Equal(float64(aID), exit["player_id"])
	req.Equal(float64(0), exit["player_type"])
}

func TestServer_DisconnectCleansUpRoom(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)

	a := dialWs(t, ts)
	idA := int(awaitFrame(t, a, isReply(TypeYourID))["data"].(map[string]any)["id"].(float64))
	b := dialWs(t, ts)
	idB := int(awaitFrame(t, b, isReply(TypeYourID))["data"].(map[string]any)["id"].(float64))

	sendCmd(t, a, "create_room", "alpha")
	roomID := int(awaitFrame(t, a, isReply("create_room"))["data"].(map[string]any)["room"].(map[string]any)["id"].(float64))
	sendCmd(t, a, "enter_room", itoa(idA), itoa(roomID))
	awaitFrame(t, a, isReply("enter_room"))
	sendCmd(t, b, "enter_room", itoa(idB), itoa(roomID))
	awaitFrame(t, b, isReply("enter_room"))

	// When A drops the connection
	req.NoError(a.Close())

	// Then B eventually sees the room with only itself seated
	deadline := time.Now().Add(3 * time.Second)
	for {
		sendCmd(t, b, "room_list")
		list := awaitFrame(t, b, isReply("room_list"))["data"].([]any)
		seats := list[0].(map[string]any)["game_players"].(map[string]any)
		observers := list[0].(map[string]any)["game_observers"].([]any)

		if len(seats) == 1 && len(observers) == 0 {
			req.Equal(float64(1), seats[itoa(idB)])
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("player %d never purged, seats=%v", idA, seats)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func itoa(v int) string { return strconv.Itoa(v) }
