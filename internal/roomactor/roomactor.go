// Package roomactor wires roomstate/roomlogic into a protoactor actor: one
// RoomActor per live room, owning its RoomState single-threaded (protoactor
// already serializes a mailbox, so roomstate needs no lock of its own) and
// driven by ticks fanned out from a shared tick.Source.
//
// Its tick loop follows the usual subscribe/run/broadcast shape of a
// per-room game loop, reworked onto protoactor: instead of a bare goroutine
// loop reading a stop channel, a room actor forwards its tick subscription's
// channel onto its own mailbox, since actor.Context has no way to select
// across channels directly.
package roomactor

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/tilekeeper/server/config"
	"github.com/tilekeeper/server/internal/actormsg"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
	"github.com/tilekeeper/server/internal/roomlogic"
	"github.com/tilekeeper/server/internal/roomstate"
	"github.com/tilekeeper/server/internal/serverctx"
	"github.com/tilekeeper/server/internal/session"
	"github.com/tilekeeper/server/internal/tick"
)

// Actor simulates one room: player admission/removal, movement and attack
// commands, and the per-tick step, flushing its Writer's batches to player
// connections after every message it handles.
type Actor struct {
	roomID  object.RoomID
	ctx     *serverctx.Context
	ticks   *tick.Source
	rootPID *actor.PID
	log     *zap.Logger

	state  *roomstate.RoomState
	writer roomstate.Writer

	cancel context.CancelFunc
}

// NewProps builds the actor.Props for a room. rootPID is where portal
// handoff requests are forwarded.
func NewProps(roomID object.RoomID, ctx *serverctx.Context, ticks *tick.Source, rootPID *actor.PID, log *zap.Logger) *actor.Props {
	return actor.PropsFromProducer(func() actor.Actor {
		return &Actor{
			roomID:  roomID,
			ctx:     ctx,
			ticks:   ticks,
			rootPID: rootPID,
			log:     log.With(zap.Uint64("room_id", uint64(roomID))),
		}
	})
}

// Receive implements actor.Actor.
func (a *Actor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.start(ctx)
	case *actor.Stopping:
		if a.cancel != nil {
			a.cancel()
		}
	case tick.Event:
		elapsed := float32(config.TickInterval.Seconds())
		roomlogic.OnTick(a.state, &a.writer, msg.Tick, msg.Time, elapsed)
		a.flush(ctx)
	case *actormsg.PlayerConnected:
		roomlogic.Connect(a.state, &a.writer, msg.PlayerID, msg.Connection, msg.SpawnPosition, time.Now())
		a.flush(ctx)
	case *actormsg.PlayerDisconnected:
		roomlogic.Disconnect(a.state, &a.writer, msg.PlayerID)
		a.flush(ctx)
	case *actormsg.PlayerCommand:
		a.handleCommand(ctx, msg)
		a.flush(ctx)
	}
}

func (a *Actor) handleCommand(ctx actor.Context, msg *actormsg.PlayerCommand) {
	switch cmd := msg.Command.(type) {
	case protocol.MoveCommand:
		roomlogic.HandleMove(a.state, &a.writer, msg.PlayerID, cmd, time.Now())
	case protocol.AttackCommand:
		roomlogic.HandleAttack(a.state, &a.writer, msg.PlayerID, cmd)
	}
}

func (a *Actor) start(ctx actor.Context) {
	// The root actor only spawns a room actor for a room id with a loaded
	// map (see rootactor.ensureRoom), so this is always present.
	m, _ := a.ctx.RoomMap(a.roomID)
	a.state = roomstate.New(a.ctx, m)
	roomlogic.PopulateMobs(a.state)

	loopCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	events := a.ticks.Subscribe()
	self := ctx.Self()
	system := ctx.ActorSystem()
	go forwardTicks(loopCtx, system, self, events)
}

// forwardTicks relays tick events onto the room actor's own mailbox, since
// a protoactor Receive can't select across the tick channel directly.
func forwardTicks(ctx context.Context, system *actor.ActorSystem, self *actor.PID, events <-chan tick.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			system.Root.Send(self, evt)
		}
	}
}

// flush drains the writer's buffered batches and upstream messages,
// resolving each batch's target against the room's current players and
// handing the encoded frame to the destination session's PID.
func (a *Actor) flush(ctx actor.Context) {
	for _, batch := range a.writer.Drain() {
		data := protocol.EncodeEventBatch(batch.Events)
		switch batch.Target.Kind {
		case roomstate.TargetPlayer:
			if p, ok := a.state.Players[batch.Target.Player]; ok {
				ctx.Send(p.Connection, &session.Outbound{Data: data})
			}
		case roomstate.TargetAll:
			for _, p := range a.state.Players {
				ctx.Send(p.Connection, &session.Outbound{Data: data})
			}
		case roomstate.TargetAllExcept:
			for id, p := range a.state.Players {
				if id == batch.Target.Player {
					continue
				}
				ctx.Send(p.Connection, &session.Outbound{Data: data})
			}
		}
	}

	for _, msg := range a.writer.DrainUpstream() {
		switch m := msg.(type) {
		case roomstate.PlayerLeftRoom:
			ctx.Send(a.rootPID, &actormsg.PlayerLeftRoom{
				PlayerID:       m.Player,
				TargetRoom:     m.TargetRoom,
				TargetPosition: m.TargetPosition,
			})
		}
	}
}
