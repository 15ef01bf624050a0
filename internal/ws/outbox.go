package ws

import (
	"sync"

	"github.com/EricJeffrey/WebsocketGomoku/internal/game"
)

// Outbox maps every connected player to its private inbox of pending
// broadcast frames. An entry exists exactly while that player's session
// runs: the session installs its queue at startup and removes it during
// teardown, so late producers drop instead of blocking.
//
// Queues are bounded; on overflow the oldest frame is dropped under the
// directory lock, which keeps the surviving frames in commit order.
type Outbox struct {
	mu       sync.Mutex
	queues   map[game.PlayerID]chan []byte
	capacity int
}

func NewOutbox(capacity int) *Outbox {
	return &Outbox{
		queues:   make(map[game.PlayerID]chan []byte),
		capacity: capacity,
	}
}

// Install creates the player's queue and returns its receive end.
func (o *Outbox) Install(id game.PlayerID) <-chan []byte {
	o.mu.Lock()
	defer o.mu.Unlock()

	q := make(chan []byte, o.capacity)
	o.queues[id] = q
	return q
}

// Remove drops and closes the player's queue. The close is safe because
// every producer resolves the queue under the same lock; after the
// delete no producer can reach it.
func (o *Outbox) Remove(id game.PlayerID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if q, ok := o.queues[id]; ok {
		delete(o.queues, id)
		close(q)
	}
}

// Enqueue appends a frame to one player's queue, never blocking. A
// missing queue (player already gone) is ignored; a full queue sheds
// its oldest frame first.
func (o *Outbox) Enqueue(id game.PlayerID, frame []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enqueueLocked(id, frame)
}

// Fanout enqueues the same frame to every recipient, best effort.
func (o *Outbox) Fanout(recipients []game.PlayerID, frame []byte) {
	if frame == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, id := range recipients {
		o.enqueueLocked(id, frame)
	}
}

func (o *Outbox) enqueueLocked(id game.PlayerID, frame []byte) {
	q, ok := o.queues[id]
	if !ok {
		return
	}
	select {
	case q <- frame:
	default:
		// Full: shed the oldest, then retry once. The consumer may have
		// drained concurrently, so the retry can still fail harmlessly.
		select {
		case <-q:
		default:
		}
		select {
		case q <- frame:
		default:
		}
	}
}

// Len reports the number of installed queues.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queues)
}
