// Package rootactor implements the server's single root actor: the
// player-to-room index, lazy room spawn/retirement, global commands
// (currently just Ping), and portal handoff between rooms.
//
// Its room directory follows the same shape as a lobby/matchmaker's room
// map keyed by id and spawned on demand, generalized from matching players
// into open slots to routing them by room assignment and portal transfer.
package rootactor

import (
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/tilekeeper/server/internal/actormsg"
	"github.com/tilekeeper/server/internal/animation"
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
	"github.com/tilekeeper/server/internal/roomactor"
	"github.com/tilekeeper/server/internal/serverctx"
	"github.com/tilekeeper/server/internal/session"
	"github.com/tilekeeper/server/internal/tick"
)

// Actor is the server's single root: it never simulates anything itself,
// only routes.
type Actor struct {
	ctx       *serverctx.Context
	ticks     *tick.Source
	startRoom object.RoomID
	log       *zap.Logger

	players map[object.ID]*playerEntry
	rooms   map[object.RoomID]*roomEntry
}

type playerEntry struct {
	connection *actor.PID
	room       object.RoomID
}

type roomEntry struct {
	pid       *actor.PID
	occupants int
}

// NewProps builds the actor.Props for the root actor.
func NewProps(ctx *serverctx.Context, ticks *tick.Source, startRoom object.RoomID, log *zap.Logger) *actor.Props {
	return actor.PropsFromProducer(func() actor.Actor {
		return &Actor{
			ctx:       ctx,
			ticks:     ticks,
			startRoom: startRoom,
			log:       log,
			players:   make(map[object.ID]*playerEntry),
			rooms:     make(map[object.RoomID]*roomEntry),
		}
	})
}

// Receive implements actor.Actor.
func (a *Actor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
	case *actor.Terminated:
		a.forgetTerminated(msg.Who)
	case *actormsg.Connect:
		a.handleConnect(ctx, msg)
	case *actormsg.Disconnect:
		a.handleDisconnect(ctx, msg)
	case *actormsg.Command:
		a.handleCommand(ctx, msg)
	case *actormsg.PlayerLeftRoom:
		a.handlePortalTransfer(ctx, msg)
	}
}

func (a *Actor) handleConnect(ctx actor.Context, msg *actormsg.Connect) {
	cfg := a.ctx.Config
	a.players[msg.PlayerID] = &playerEntry{connection: msg.Connection, room: a.startRoom}

	ctx.Send(msg.Connection, &session.Outbound{Data: protocol.EncodeEventBatch([]protocol.Event{
		protocol.InitialEvent{
			PlayerID: msg.PlayerID,
			Config: protocol.ClientConfig{
				PlayerVelocity: cfg.PlayerVelocity,
				Animations:     a.playerAnimations(),
			},
		},
	})})

	room := a.ensureRoom(ctx, a.startRoom)
	if room == nil {
		return
	}
	a.rooms[a.startRoom].occupants++
	ctx.Send(room, &actormsg.PlayerConnected{
		PlayerID:      msg.PlayerID,
		Connection:    msg.Connection,
		SpawnPosition: a.spawnPosition(a.startRoom),
	})
}

func (a *Actor) handleDisconnect(ctx actor.Context, msg *actormsg.Disconnect) {
	p, ok := a.players[msg.PlayerID]
	if !ok {
		return
	}
	delete(a.players, msg.PlayerID)

	if room, ok := a.rooms[p.room]; ok {
		ctx.Send(room.pid, &actormsg.PlayerDisconnected{PlayerID: msg.PlayerID})
		a.releaseOccupant(ctx, p.room)
	}
}

func (a *Actor) handleCommand(ctx actor.Context, msg *actormsg.Command) {
	switch cmd := msg.Command.(type) {
	case protocol.PingCommand:
		p, ok := a.players[msg.PlayerID]
		if !ok {
			return
		}
		ctx.Send(p.connection, &session.Outbound{Data: protocol.EncodeEventBatch([]protocol.Event{
			protocol.PongEvent{Sequence: cmd.Sequence, SentAt: time.Now().UnixMilli()},
		})})
	case protocol.MoveCommand, protocol.AttackCommand:
		p, ok := a.players[msg.PlayerID]
		if !ok || p.room != msg.RoomID {
			return // stale command racing a portal transfer, or unknown player
		}
		room, ok := a.rooms[p.room]
		if !ok {
			return
		}
		ctx.Send(room.pid, &actormsg.PlayerCommand{PlayerID: msg.PlayerID, Command: msg.Command})
	}
}

func (a *Actor) handlePortalTransfer(ctx actor.Context, msg *actormsg.PlayerLeftRoom) {
	p, ok := a.players[msg.PlayerID]
	if !ok {
		return
	}
	sourceRoom := p.room
	p.room = msg.TargetRoom

	target := a.ensureRoom(ctx, msg.TargetRoom)
	if target == nil {
		a.releaseOccupant(ctx, sourceRoom)
		return
	}
	a.rooms[msg.TargetRoom].occupants++
	ctx.Send(target, &actormsg.PlayerConnected{
		PlayerID:      msg.PlayerID,
		Connection:    p.connection,
		SpawnPosition: msg.TargetPosition,
	})

	a.releaseOccupant(ctx, sourceRoom)
}

// ensureRoom returns the PID for roomID, spawning it on first use.
func (a *Actor) ensureRoom(ctx actor.Context, roomID object.RoomID) *actor.PID {
	if r, ok := a.rooms[roomID]; ok {
		return r.pid
	}
	if _, ok := a.ctx.RoomMap(roomID); !ok {
		a.log.Error("refusing to spawn room with no map", zap.Uint64("room_id", uint64(roomID)))
		return nil
	}
	props := roomactor.NewProps(roomID, a.ctx, a.ticks, ctx.Self(), a.log)
	pid, err := ctx.SpawnNamed(props, fmt.Sprintf("room-%d", roomID))
	if err != nil {
		a.log.Error("spawn room failed", zap.Uint64("room_id", uint64(roomID)), zap.Error(err))
		return nil
	}
	ctx.Watch(pid)
	a.rooms[roomID] = &roomEntry{pid: pid}
	return pid
}

// releaseOccupant drops one occupant from roomID and retires the room actor
// once nobody is left in it.
func (a *Actor) releaseOccupant(ctx actor.Context, roomID object.RoomID) {
	r, ok := a.rooms[roomID]
	if !ok {
		return
	}
	r.occupants--
	if r.occupants <= 0 {
		ctx.Stop(r.pid)
		delete(a.rooms, roomID)
	}
}

// forgetTerminated drops the bookkeeping for a room actor that stopped,
// whether retired by releaseOccupant or stopped for any other reason.
func (a *Actor) forgetTerminated(who *actor.PID) {
	for id, r := range a.rooms {
		if r.pid.Equal(who) {
			delete(a.rooms, id)
			return
		}
	}
}

// playerAnimations returns the shared player animation set, or a zero value
// if none was configured at startup.
func (a *Actor) playerAnimations() animation.Set {
	if a.ctx.PlayerAnimation == nil {
		return animation.Set{}
	}
	return *a.ctx.PlayerAnimation
}

func (a *Actor) spawnPosition(roomID object.RoomID) geom.Vec2 {
	if m, ok := a.ctx.RoomMap(roomID); ok {
		return m.SpawnPosition
	}
	return geom.Vec2{}
}
