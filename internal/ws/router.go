package ws

import (
	"errors"
	"strings"
	"sync"

	"github.com/EricJeffrey/WebsocketGomoku/internal/game"
)

// errBadArgument marks an unparsable positional argument; the reply
// carries it as a diagnostic instead of the "no data" domain rejection.
var errBadArgument = errors.New("invalid argument")

// outEvent is a broadcast produced by a handler: one frame plus the
// recipient set captured inside the registry critical section.
type outEvent struct {
	event      Event
	recipients []game.PlayerID
}

// handlerFunc executes one verb. args excludes the verb line. On
// success it returns the direct-reply payload and an optional broadcast.
type handlerFunc func(s *session, args []string) (any, *outEvent, error)

type command struct {
	arity int // total lines including the verb
	fn    handlerFunc
}

// Router keeps a map[verb]command, à-la gin.Engine.
type Router struct {
	mu       sync.RWMutex
	commands map[string]command
}

func NewRouter() *Router { return &Router{commands: make(map[string]command)} }

// Register binds a verb to its handler and fixed arity.
func (r *Router) Register(verb string, arity int, fn handlerFunc) {
	if verb == "" {
		panic("ws router: empty verb")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[verb] = command{arity: arity, fn: fn}
}

// Dispatch parses one inbound text frame (LF-separated fields, verb
// first) and runs its handler. It always produces a direct reply and
// never panics outward; broadcasts come back separately so the session
// can fan them out.
func (r *Router) Dispatch(s *session, msg string) (Reply, *outEvent) {
	lines := strings.Split(msg, "\n")
	if len(lines) == 0 || lines[0] == "" {
		return failReply(TypeInvalidData, "empty message"), nil
	}
	verb := lines[0]

	r.mu.RLock()
	cmd, ok := r.commands[verb]
	r.mu.RUnlock()
	if !ok {
		return failReply(verb, "unknown message"), nil
	}
	if len(lines) != cmd.arity {
		return failReply(verb, "wrong number of arguments"), nil
	}

	payload, evt, err := cmd.fn(s, lines[1:])
	if err != nil {
		if errors.Is(err, game.ErrNotFound) {
			return failReply(verb, noData), nil
		}
		return failReply(verb, err.Error()), nil
	}
	return okReply(verb, payload), evt
}
