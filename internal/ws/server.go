package ws

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/EricJeffrey/WebsocketGomoku/internal/game"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second

	// directWriteRetries bounds the would-block retries for a direct
	// reply before the session is torn down.
	directWriteRetries = 3

	readLimit = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // dev-only
}

// WsServer owns the command handlers and spawns one session per
// accepted connection. All game state lives in the registry; all
// cross-session delivery goes through the outbox.
type WsServer struct {
	registry      *game.Registry
	outbox        *Outbox
	router        *Router
	flushInterval time.Duration

	// dispatchMu serializes command dispatch with the fanout of its
	// broadcast. A mutation commits under the registry lock inside
	// Dispatch; holding dispatchMu until the frames are enqueued keeps
	// every inbox in commit order. Never held across socket I/O.
	dispatchMu sync.Mutex
}

func NewWsServer(registry *game.Registry, outbox *Outbox, flushInterval time.Duration) *WsServer {
	srv := &WsServer{
		registry:      registry,
		outbox:        outbox,
		router:        NewRouter(),
		flushInterval: flushInterval,
	}
	srv.registerHandlers() // ← all verbs configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(readLimit)

	sess := newSession(s, &clientConn{rawConn: rawConn}, ginCtx.Request.RemoteAddr)
	go sess.run()
}

// dispatch runs one command and enqueues its broadcast before any other
// command can commit, so per-recipient delivery order always equals the
// commit order of the underlying mutations. The direct reply is written
// by the caller, outside dispatchMu.
func (s *WsServer) dispatch(sess *session, msg string) Reply {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	reply, evt := s.router.Dispatch(sess, msg)
	if evt != nil {
		// Best effort: recipients that are gone or full are skipped.
		s.outbox.Fanout(evt.recipients, encode(evt.event))
	}
	return reply
}

// ---------------------------------------------------------------------------
//  Command handlers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	s.router.Register(VerbCreateRoom, 2, s.handleCreateRoom)
	s.router.Register(VerbRoomList, 1, s.handleRoomList)
	s.router.Register(VerbEnterRoom, 3, s.handleEnterRoom)
	s.router.Register(VerbExitRoom, 3, s.handleExitRoom)
	s.router.Register(VerbResetGame, 2, s.handleResetGame)
	s.router.Register(VerbPutPiece, 5, s.handlePutPiece)
}

// create_room announces the fresh room list to every connected player.
func (s *WsServer) handleCreateRoom(_ *session, args []string) (any, *outEvent, error) {
	created, roomList, everyone := s.registry.CreateRoom(args[0])
	evt := &outEvent{
		event:      Event{MsgOthers: EventRoomList, Data: roomList},
		recipients: everyone,
	}
	return created, evt, nil
}

func (s *WsServer) handleRoomList(_ *session, _ []string) (any, *outEvent, error) {
	return s.registry.ListRooms(), nil, nil
}

func (s *WsServer) handleEnterRoom(_ *session, args []string) (any, *outEvent, error) {
	playerID, err := parsePlayerID(args[0])
	if err != nil {
		return nil, nil, err
	}
	roomID, err := parseRoomID(args[1])
	if err != nil {
		return nil, nil, err
	}

	summary, seat, roster, err := s.registry.EnterRoom(playerID, roomID)
	if err != nil {
		return nil, nil, err
	}
	evt := &outEvent{
		event: Event{MsgOthers: EventEnterRoom, Data: MembershipBody{
			RoomID:     roomID,
			PlayerID:   playerID,
			PlayerType: seat.Code(),
		}},
		recipients: roster,
	}
	return summary, evt, nil
}

// exit_room captures the seat and roster before the removal, so the
// broadcast carries the vacated role and reaches the leaving player.
func (s *WsServer) handleExitRoom(_ *session, args []string) (any, *outEvent, error) {
	playerID, err := parsePlayerID(args[0])
	if err != nil {
		return nil, nil, err
	}
	roomID, err := parseRoomID(args[1])
	if err != nil {
		return nil, nil, err
	}

	seat, wasMember, roster, err := s.registry.ExitRoom(playerID, roomID)
	if err != nil {
		return nil, nil, err
	}
	if !wasMember {
		return AckBody{}, nil, nil
	}
	evt := &outEvent{
		event: Event{MsgOthers: EventExitRoom, Data: MembershipBody{
			RoomID:     roomID,
			PlayerID:   playerID,
			PlayerType: seat.Code(),
		}},
		recipients: roster,
	}
	return AckBody{}, evt, nil
}

func (s *WsServer) handleResetGame(_ *session, args []string) (any, *outEvent, error) {
	roomID, err := parseRoomID(args[0])
	if err != nil {
		return nil, nil, err
	}
	roster, err := s.registry.ResetGame(roomID)
	if err != nil {
		return nil, nil, err
	}
	evt := &outEvent{
		event:      Event{MsgOthers: EventReset},
		recipients: roster,
	}
	return AckBody{}, evt, nil
}

func (s *WsServer) handlePutPiece(_ *session, args []string) (any, *outEvent, error) {
	roomID, err := parseRoomID(args[0])
	if err != nil {
		return nil, nil, err
	}
	row, err := parseCoord(args[1])
	if err != nil {
		return nil, nil, err
	}
	col, err := parseCoord(args[2])
	if err != nil {
		return nil, nil, err
	}
	code, err := parseCoord(args[3])
	if err != nil {
		return nil, nil, err
	}

	piece := game.PieceFromCode(code)
	roster, err := s.registry.PutPiece(roomID, row, col, piece)
	if err != nil {
		return nil, nil, err
	}
	evt := &outEvent{
		event: Event{MsgOthers: EventPutPiece, Data: PutPieceBody{
			RoomID:    roomID,
			RowI:      row,
			ColJ:      col,
			PieceType: piece.Code(),
		}},
		recipients: roster,
	}
	return AckBody{}, evt, nil
}

// ---------------------------------------------------------------------------
//  Argument parsing
// ---------------------------------------------------------------------------

func parsePlayerID(s string) (game.PlayerID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errBadArgument
	}
	return game.PlayerID(v), nil
}

func parseRoomID(s string) (game.RoomID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errBadArgument
	}
	return game.RoomID(v), nil
}

// parseCoord parses the unsigned fields: row, col and piece code.
func parseCoord(s string) (int, error) {
	v, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, errBadArgument
	}
	return int(v), nil
}
