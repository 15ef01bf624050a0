package ws

import (
	"time"

	"github.com/EricJeffrey/WebsocketGomoku/internal/game"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// session is the per-client connection worker. A reader goroutine feeds
// inbound text frames into frames; the worker loop interleaves frame
// dispatch, inbox draining and flushing of the pending-out FIFO. A
// would-block write leaves the frame queued for the next iteration; any
// hard failure sets closing and the loop exits through teardown.
type session struct {
	srv  *WsServer
	conn *clientConn

	playerID game.PlayerID
	peer     string
	log      *zap.Logger

	inbox   <-chan []byte
	frames  chan string
	done    chan struct{}
	pending [][]byte
	closing bool
}

func newSession(srv *WsServer, conn *clientConn, peer string) *session {
	return &session{
		srv:    srv,
		conn:   conn,
		peer:   peer,
		frames: make(chan string, 8),
		done:   make(chan struct{}),
		log: zap.L().With(
			zap.String("conn_id", uuid.NewString()),
			zap.String("peer", peer),
		),
	}
}

// run registers the player, installs its inbox, performs the your_id
// handshake and drives the worker loop. Teardown runs on every exit
// path once registration has happened.
func (s *session) run() {
	s.playerID = s.srv.registry.RegisterPlayer(s.peer)
	s.inbox = s.srv.outbox.Install(s.playerID)
	s.log = s.log.With(zap.Int64("player_id", int64(s.playerID)))
	s.log.Info("session.start")

	defer s.teardown()

	if err := s.writeDirect(encode(okReply(TypeYourID, YourIDBody{ID: s.playerID}))); err != nil {
		s.log.Warn("session.handshake", zap.Error(err))
		return
	}

	go s.reader()
	s.loop()
}

// reader blocks on the socket and forwards text frames to the worker.
// It exits, closing frames, on any read error or close frame.
func (s *session) reader() {
	for {
		msgType, data, err := s.conn.rawConn.ReadMessage()
		if err != nil {
			close(s.frames)
			return
		}
		if msgType != websocket.TextMessage {
			s.log.Debug("session.read", zap.Int("frame_type", msgType))
			continue
		}
		select {
		case s.frames <- string(data):
		case <-s.done:
			return
		}
	}
}

func (s *session) loop() {
	flushTicker := time.NewTicker(s.srv.flushInterval)
	defer flushTicker.Stop()

	for !s.closing {
		select {
		case msg, ok := <-s.frames:
			if !ok {
				s.closing = true
				break
			}
			s.handleFrame(msg)
		case evt, ok := <-s.inbox:
			if !ok {
				s.closing = true
				break
			}
			s.pending = append(s.pending, evt)
		case <-flushTicker.C:
			// retry tick for frames parked by a would-block write
		}
		if s.closing {
			break
		}
		s.drainInbox()
		s.flush()
	}
}

// handleFrame dispatches one command, fans out its broadcast and sends
// the direct reply before control returns to the loop.
func (s *session) handleFrame(msg string) {
	reply := s.srv.dispatch(s, msg)
	if err := s.writeDirect(encode(reply)); err != nil {
		s.log.Warn("session.reply", zap.Error(err))
		s.closing = true
	}
}

// writeDirect sends one frame, retrying a bounded number of times on
// would-block. Exhausting the retries is a permanent failure.
func (s *session) writeDirect(frame []byte) error {
	var err error
	for i := 0; i < directWriteRetries; i++ {
		if err = s.conn.write(frame); err == nil || !isWouldBlock(err) {
			return err
		}
	}
	return err
}

// drainInbox moves every queued event into pending without blocking.
func (s *session) drainInbox() {
	for {
		select {
		case evt, ok := <-s.inbox:
			if !ok {
				s.closing = true
				return
			}
			s.pending = append(s.pending, evt)
		default:
			return
		}
	}
}

// flush writes pending frames in order. A would-block keeps the head
// for the next iteration; any other error tears the session down.
func (s *session) flush() {
	for len(s.pending) > 0 {
		err := s.conn.write(s.pending[0])
		if err == nil {
			s.pending = s.pending[1:]
			continue
		}
		if isWouldBlock(err) {
			return
		}
		s.log.Warn("session.flush", zap.Error(err))
		s.closing = true
		return
	}
}

// teardown removes the inbox entry, closes the socket and unregisters
// the player, in that order, so late producers drop instead of
// enqueueing to a dead session.
func (s *session) teardown() {
	close(s.done)
	s.srv.outbox.Remove(s.playerID)
	_ = s.conn.close()
	s.srv.registry.UnregisterPlayer(s.playerID)
	s.log.Info("session.end")
}
