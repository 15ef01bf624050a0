package game

import (
	"errors"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// ErrNotFound covers every domain rejection: unknown room, unknown
// player, out-of-range coordinates, empty piece. Callers surface a
// single failure kind to clients.
var ErrNotFound = errors.New("room or player not found")

// Player is the identity record kept per connected client.
type Player struct {
	ID       PlayerID
	PeerAddr string
}

// RoomRef is the short room descriptor returned to the creator.
type RoomRef struct {
	ID   RoomID `json:"id"`
	Name string `json:"name"`
}

// RoomCreated is the create_room reply payload.
type RoomCreated struct {
	Room RoomRef `json:"room"`
}

// Registry is the process-wide directory of rooms and players. One
// exclusive lock guards every operation; a mutation and the capture of
// its broadcast recipient set happen in the same critical section, which
// gives all recipients a single commit order per room. Fine-grained
// locking is deliberately avoided.
type Registry struct {
	mu           sync.Mutex
	rooms        map[RoomID]*Room
	players      map[PlayerID]*Player
	nextPlayerID PlayerID
	nextRoomID   RoomID
	boardRows    int
	boardCols    int
}

func NewRegistry(boardRows, boardCols int) *Registry {
	return &Registry{
		rooms:     make(map[RoomID]*Room),
		players:   make(map[PlayerID]*Player),
		boardRows: boardRows,
		boardCols: boardCols,
	}
}

// RegisterPlayer allocates the next player id and records the peer.
// Ids start at 1 and are never reused.
func (rg *Registry) RegisterPlayer(peerAddr string) PlayerID {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	rg.nextPlayerID++
	id := rg.nextPlayerID
	rg.players[id] = &Player{ID: id, PeerAddr: peerAddr}
	return id
}

// UnregisterPlayer removes the player and purges it from every room's
// seats and observers. Idempotent.
func (rg *Registry) UnregisterPlayer(id PlayerID) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	delete(rg.players, id)
	for _, room := range rg.rooms {
		room.RemovePlayer(id)
	}
}

// CreateRoom allocates a room with a default board and returns the
// creator's reply payload, the fresh room list, and the recipient set
// for the room_list broadcast (every connected player).
func (rg *Registry) CreateRoom(name string) (RoomCreated, []RoomSummary, []PlayerID) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	rg.nextRoomID++
	id := rg.nextRoomID
	rg.rooms[id] = newRoom(id, name, rg.boardRows, rg.boardCols)

	created := RoomCreated{Room: RoomRef{ID: id, Name: name}}
	return created, rg.roomListLocked(), lo.Keys(rg.players)
}

func (rg *Registry) ListRooms() []RoomSummary {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	return rg.roomListLocked()
}

func (rg *Registry) roomListLocked() []RoomSummary {
	list := make([]RoomSummary, 0, len(rg.rooms))
	for _, room := range rg.rooms {
		list = append(list, room.Summary())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// EnterRoom seats or admits the player and returns the post-entry room
// summary, the role assigned, and the post-entry roster as the
// broadcast recipient set.
func (rg *Registry) EnterRoom(playerID PlayerID, roomID RoomID) (RoomSummary, Seat, []PlayerID, error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	if _, ok := rg.players[playerID]; !ok {
		return RoomSummary{}, 0, nil, ErrNotFound
	}
	room, ok := rg.rooms[roomID]
	if !ok {
		return RoomSummary{}, 0, nil, ErrNotFound
	}
	seat := room.AddPlayer(playerID)
	return room.Summary(), seat, room.Roster(), nil
}

// ExitRoom removes the player from the room. The returned seat and
// recipient set are captured BEFORE the mutation so the exit broadcast
// carries the vacated role and still reaches the leaving player.
// wasMember is false when the player was not in the room; the removal
// still succeeds but there is nothing to announce.
func (rg *Registry) ExitRoom(playerID PlayerID, roomID RoomID) (seat Seat, wasMember bool, recipients []PlayerID, err error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	if _, ok := rg.players[playerID]; !ok {
		return 0, false, nil, ErrNotFound
	}
	room, ok := rg.rooms[roomID]
	if !ok {
		return 0, false, nil, ErrNotFound
	}
	seat, wasMember = room.SeatOf(playerID)
	recipients = room.Roster()
	room.RemovePlayer(playerID)
	return seat, wasMember, recipients, nil
}

// ResetGame clears the room's board and returns the roster to notify.
func (rg *Registry) ResetGame(roomID RoomID) ([]PlayerID, error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	room, ok := rg.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	room.board.Reset()
	return room.Roster(), nil
}

// PutPiece places a black or white piece inside the board bounds and
// returns the roster to notify. Empty pieces and out-of-range
// coordinates are rejected without mutation.
func (rg *Registry) PutPiece(roomID RoomID, row, col int, piece Piece) ([]PlayerID, error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	if piece != PieceBlack && piece != PieceWhite {
		return nil, ErrNotFound
	}
	room, ok := rg.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	if !room.board.InBounds(row, col) {
		return nil, ErrNotFound
	}
	room.board.Put(row, col, piece)
	return room.Roster(), nil
}

// PlayersOfRoom returns the roster of one room.
func (rg *Registry) PlayersOfRoom(roomID RoomID) ([]PlayerID, error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	room, ok := rg.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	return room.Roster(), nil
}

// AllPlayers returns every connected player id, unordered.
func (rg *Registry) AllPlayers() []PlayerID {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	return lo.Keys(rg.players)
}

// SeatOf reports the player's role in the room, or ErrNotFound if the
// room does not exist or the player is not a member.
func (rg *Registry) SeatOf(playerID PlayerID, roomID RoomID) (Seat, error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	room, ok := rg.rooms[roomID]
	if !ok {
		return 0, ErrNotFound
	}
	seat, ok := room.SeatOf(playerID)
	if !ok {
		return 0, ErrNotFound
	}
	return seat, nil
}

// PieceAt is a read projection used by tests and diagnostics.
func (rg *Registry) PieceAt(roomID RoomID, row, col int) (Piece, error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	room, ok := rg.rooms[roomID]
	if !ok {
		return PieceEmpty, ErrNotFound
	}
	if !room.board.InBounds(row, col) {
		return PieceEmpty, ErrNotFound
	}
	return room.board.At(row, col), nil
}
