package game

import (
	"strconv"

	"github.com/samber/lo"
)

// PlayerID and RoomID are monotonic ids issued by the Registry and are
// never reused within a process lifetime.
type PlayerID int64
type RoomID int64

// Seat is a player's role within a room.
type Seat int

const (
	SeatObserver Seat = -1
	SeatOne      Seat = 0
	SeatTwo      Seat = 1
)

func (s Seat) Code() int { return int(s) }

// opposite returns the other playing seat. Only meaningful for SeatOne
// and SeatTwo.
func (s Seat) opposite() Seat {
	if s == SeatOne {
		return SeatTwo
	}
	return SeatOne
}

// RoomSummary mirrors the room JSON sent in room_list and enter_room
// replies. Seat codes: seat one = 0, seat two = 1, observer = -1.
type RoomSummary struct {
	ID        RoomID         `json:"id"`
	Name      string         `json:"name"`
	Seats     map[string]int `json:"game_players"`
	Observers []PlayerID     `json:"game_observers"`
	Board     BoardInfo      `json:"game"`
}

// Room owns one board plus its membership roster: at most two seated
// players and an unbounded observer set. The Registry serializes all
// access; Room itself is not safe for concurrent use.
type Room struct {
	id        RoomID
	name      string
	seats     map[PlayerID]Seat
	observers map[PlayerID]struct{}
	board     *Board
}

func newRoom(id RoomID, name string, rows, cols int) *Room {
	return &Room{
		id:        id,
		name:      name,
		seats:     make(map[PlayerID]Seat),
		observers: make(map[PlayerID]struct{}),
		board:     NewBoard(rows, cols),
	}
}

// AddPlayer assigns a role: first entrant takes seat one, the second
// takes the seat opposite the lone occupant, everyone after that
// observes. Re-entering while already present is a no-op that returns
// the current role.
func (r *Room) AddPlayer(id PlayerID) Seat {
	if seat, ok := r.seats[id]; ok {
		return seat
	}
	if _, ok := r.observers[id]; ok {
		return SeatObserver
	}

	switch len(r.seats) {
	case 0:
		r.seats[id] = SeatOne
		return SeatOne
	case 1:
		var occupied Seat
		for _, s := range r.seats {
			occupied = s
		}
		seat := occupied.opposite()
		r.seats[id] = seat
		return seat
	default:
		r.observers[id] = struct{}{}
		return SeatObserver
	}
}

// RemovePlayer drops id from both seats and observers. Idempotent;
// vacated seats are not refilled from observers.
func (r *Room) RemovePlayer(id PlayerID) {
	delete(r.seats, id)
	delete(r.observers, id)
}

// SeatOf reports the player's role, or false if not present in the room.
func (r *Room) SeatOf(id PlayerID) (Seat, bool) {
	if seat, ok := r.seats[id]; ok {
		return seat, true
	}
	if _, ok := r.observers[id]; ok {
		return SeatObserver, true
	}
	return 0, false
}

// Roster returns every member id, seated and observing, unordered.
func (r *Room) Roster() []PlayerID {
	return append(lo.Keys(r.seats), lo.Keys(r.observers)...)
}

func (r *Room) Summary() RoomSummary {
	seats := make(map[string]int, len(r.seats))
	for id, seat := range r.seats {
		seats[strconv.FormatInt(int64(id), 10)] = seat.Code()
	}
	return RoomSummary{
		ID:        r.id,
		Name:      r.name,
		Seats:     seats,
		Observers: lo.Keys(r.observers),
		Board:     r.board.Describe(),
	}
}
