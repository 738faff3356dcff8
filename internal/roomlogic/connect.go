// Package roomlogic implements a room's rules as pure functions over
// roomstate.RoomState and roomstate.Writer. Nothing here depends on the
// actor framework or the network; internal/roomactor is the only caller,
// which makes this package unit-testable on its own.
package roomlogic

import (
	"time"

	"github.com/tilekeeper/server/internal/direction"
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
	"github.com/tilekeeper/server/internal/roomstate"
)

// Connect admits a newly-joined player into the room: existing players are
// told the newcomer appeared, the newcomer gets the room snapshot followed
// by every existing player and mob's current appearance.
func Connect(state *roomstate.RoomState, w *roomstate.Writer, playerID object.ID, conn roomstate.PlayerConnection, spawnPos geom.Vec2, now time.Time) {
	cfg := state.Ctx.Config

	w.BroadcastExcept(playerID, protocol.ObjectAppearedEvent{
		ObjectID:    playerID,
		AnimationID: cfg.PlayerAnimationID,
		Velocity:    cfg.PlayerVelocity,
		Position:    spawnPos,
	})
	w.BroadcastExcept(playerID, protocol.ObjectMovementChangedEvent{
		ObjectID:      playerID,
		Position:      spawnPos,
		HasDirection:  false,
		Direction:     direction.Down,
		LookDirection: direction.Down,
	})

	state.Players[playerID] = &roomstate.Player{
		ID:         playerID,
		Connection: conn,
		Local:      roomstate.LocalMovement{Position: spawnPos},
		Remote: roomstate.RemoteMovement{
			Position:      spawnPos,
			LookDirection: direction.Down,
			DeclaredAt:    now,
		},
		Velocity:  cfg.PlayerVelocity,
		Health:    cfg.PlayerMaxHealth,
		MaxHealth: cfg.PlayerMaxHealth,
	}

	w.Tell(playerID, protocol.RoomEnteredEvent{Room: protocol.NewRoomSync(state.Map)})

	for id, p := range state.Players {
		if id == playerID {
			continue
		}
		interpolated := p.Remote.Interpolate(now, p.Velocity)
		w.Tell(playerID, protocol.ObjectAppearedEvent{
			ObjectID:    p.ID,
			AnimationID: cfg.PlayerAnimationID,
			Velocity:    cfg.PlayerVelocity,
			Position:    interpolated,
		})
		w.Tell(playerID, protocol.ObjectMovementChangedEvent{
			ObjectID:      p.ID,
			Position:      interpolated,
			HasDirection:  p.Remote.HasDirection,
			Direction:     p.Remote.Direction,
			LookDirection: p.Remote.LookDirection,
		})
	}

	for _, m := range state.Mobs {
		w.Tell(playerID, protocol.ObjectAppearedEvent{
			ObjectID:    m.ID,
			AnimationID: m.Template.AnimationID,
			Velocity:    m.Template.Velocity,
			Position:    m.Movement.Position,
		})
	}
}

// Disconnect removes a player from the room and tells everyone else.
func Disconnect(state *roomstate.RoomState, w *roomstate.Writer, playerID object.ID) {
	if _, ok := state.Players[playerID]; !ok {
		return
	}
	delete(state.Players, playerID)
	w.Broadcast(protocol.ObjectDisappearedEvent{ObjectID: playerID})
}
