package ws

import (
	"encoding/json"

	"github.com/EricJeffrey/WebsocketGomoku/internal/game"
	"go.uber.org/zap"
)

// Command verbs accepted on the wire.
const (
	VerbCreateRoom = "create_room"
	VerbRoomList   = "room_list"
	VerbEnterRoom  = "enter_room"
	VerbExitRoom   = "exit_room"
	VerbResetGame  = "reset_game"
	VerbPutPiece   = "put_piece"

	TypeYourID      = "your_id"
	TypeInvalidData = "invalid data"
)

// Broadcast event names carried under "msg_others".
const (
	EventRoomList  = "room_list"
	EventEnterRoom = "enter_room"
	EventExitRoom  = "exit_room"
	EventReset     = "reset"
	EventPutPiece  = "put_piece"
)

// noData is the literal payload of a domain-rejected command.
const noData = "no data"

// Reply is the direct response to the command originator.
type Reply struct {
	OK   bool   `json:"ok"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event is the envelope fanned out to room members. The reset event
// carries no data field at all.
type Event struct {
	MsgOthers string `json:"msg_others"`
	Data      any    `json:"data,omitempty"`
}

// ──────────────────────────── Payload DTOs ────────────────────────────

// YourIDBody is the handshake payload carrying the assigned player id.
type YourIDBody struct {
	ID game.PlayerID `json:"id"`
}

// AckBody marshals as {} for commands whose success needs no payload.
type AckBody struct{}

// MembershipBody is the enter_room / exit_room broadcast payload.
// PlayerType is the seat code: seat one = 0, seat two = 1, observer = -1.
// For exit_room it is the seat vacated.
type MembershipBody struct {
	RoomID     game.RoomID   `json:"room_id"`
	PlayerID   game.PlayerID `json:"player_id"`
	PlayerType int           `json:"player_type"`
}

// PutPieceBody is the put_piece broadcast payload.
type PutPieceBody struct {
	RoomID    game.RoomID `json:"room_id"`
	RowI      int         `json:"row_i"`
	ColJ      int         `json:"col_j"`
	PieceType int         `json:"piece_type"`
}

func okReply(verb string, data any) Reply {
	return Reply{OK: true, Type: verb, Data: data}
}

// failReply carries "no data" for domain rejections or a short
// diagnostic for ill-formed commands.
func failReply(verb string, diagnostic string) Reply {
	return Reply{OK: false, Type: verb, Data: diagnostic}
}

// encode marshals a frame for the wire. The DTOs above cannot fail to
// marshal; a nil return is only reachable through a programming error.
func encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("ws.encode", zap.Error(err))
		return nil
	}
	return data
}
