// Package session owns one player's websocket connection: a read pump
// decoding client frames onto the root actor's mailbox, a write pump
// draining a bounded send channel onto the socket, and a thin protoactor
// actor (Actor) other actors address like any other PID to hand it outbound
// batches.
//
// Follows the usual ClientConnection readPump/writePump split, generalized
// so the write half is reachable by PID, with a thin actor wrapping the
// goroutine-driven socket so other actors can address it like a mailbox.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/gorilla/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tilekeeper/server/config"
	"github.com/tilekeeper/server/internal/actormsg"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxFrameBytes  = 65536
	handshakeWait  = 5 * time.Second
)

// Session owns the socket and the channel its write pump drains. conn is
// only ever touched from readPump/writePump/Close; state other actors can
// see lives on the session actor.
type Session struct {
	conn         *websocket.Conn
	playerID     object.ID
	correlation  uuid.UUID
	rootPID      *actor.PID
	pid          *actor.PID
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	log          *zap.Logger
}

// PlayerID returns the session's minted player id.
func (s *Session) PlayerID() object.ID { return s.playerID }

// Serve upgrades an HTTP request to a websocket, spawns the session's actor,
// and runs its read/write pumps. Blocks until the connection ends.
func Serve(conn *websocket.Conn, system *actor.ActorSystem, rootPID *actor.PID, log *zap.Logger) {
	id := object.NextID()
	corr := uuid.New()

	s := &Session{
		conn:        conn,
		playerID:    id,
		correlation: corr,
		rootPID:     rootPID,
		send:        make(chan []byte, config.SessionSendCapacity),
		done:        make(chan struct{}),
		log:         log.With(zap.Uint64("player_id", uint64(id)), zap.String("connection", corr.String())),
	}

	props := actor.PropsFromProducer(func() actor.Actor { return &Actor{session: s} })
	pid, err := system.Root.SpawnNamed(props, fmt.Sprintf("session-%d", id))
	if err != nil {
		s.log.Error("failed to spawn session actor", zap.Error(err))
		conn.Close()
		return
	}
	s.pid = pid

	go s.writePump()
	s.readPump(system)
}

// PID is the address other actors send Outbound batches to.
func (s *Session) PID() *actor.PID { return s.pid }

func (s *Session) readPump(system *actor.ActorSystem) {
	defer s.close(system)

	s.conn.SetReadLimit(maxFrameBytes)
	s.conn.SetReadDeadline(time.Now().Add(handshakeWait))

	_, hello, err := s.conn.ReadMessage()
	if err != nil || !protocol.ValidHandshake(hello) {
		s.log.Warn("handshake rejected", zap.Error(err))
		return
	}

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	system.Root.Send(s.rootPID, &actormsg.Connect{PlayerID: s.playerID, Connection: s.pid})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		cmd, err := protocol.DecodeCommand(data)
		if err != nil {
			s.log.Debug("dropping malformed frame", zap.Error(err))
			continue
		}
		system.Root.Send(s.rootPID, &actormsg.Command{
			PlayerID: s.playerID,
			RoomID:   roomIDOf(cmd),
			Command:  cmd,
		})
	}
}

func roomIDOf(cmd protocol.Command) object.RoomID {
	switch c := cmd.(type) {
	case protocol.MoveCommand:
		return c.RoomID
	case protocol.AttackCommand:
		return c.RoomID
	default:
		return 0
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer s.conn.Close()

	for {
		select {
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data, ok := <-s.send:
			if !ok {
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close signals the write pump to shut down and tells the root actor this
// player is gone. Safe to call more than once.
func (s *Session) close(system *actor.ActorSystem) {
	s.closeOnce.Do(func() {
		close(s.done)
		system.Root.Send(s.rootPID, &actormsg.Disconnect{PlayerID: s.playerID})
		if s.pid != nil {
			system.Root.Stop(s.pid)
		}
	})
}
