package roomlogic

import (
	"time"

	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
	"github.com/tilekeeper/server/internal/roomstate"
)

// OnTick advances one simulation step: player interpolation (with portal
// crossing and collision correction), mob AI, mob respawns, and passive
// healing. now is this tick's wall-clock timestamp, against which each
// player's declared movement is interpolated; elapsedSeconds is the fixed
// tick interval mob movement advances by.
func OnTick(state *roomstate.RoomState, w *roomstate.Writer, currentTick object.Tick, now time.Time, elapsedSeconds float32) {
	state.CurrentTick = currentTick

	for id, p := range state.Players {
		if p.PendingTransfer != nil {
			continue // already leaving, awaiting removal below
		}

		next := p.Remote.Interpolate(now, p.Velocity)

		if portal, ok := state.Map.PortalAt(next.Floor()); ok {
			p.PendingTransfer = &roomstate.PortalTransfer{
				TargetRoom:     portal.TargetRoom,
				TargetPosition: portal.TargetPosition,
			}
			w.Upstream(roomstate.PlayerLeftRoom{
				Player:         id,
				TargetRoom:     portal.TargetRoom,
				TargetPosition: portal.TargetPosition,
			})
			continue
		}

		if state.Map.CollisionAt(next) {
			preventPlayerCollision(w, p)
			continue
		}

		crossedTile := next.Floor() != p.Local.Position.Floor()
		p.Local.Position = next
		if crossedTile {
			w.BroadcastExcept(id, protocol.ObjectMovementChangedEvent{
				ObjectID:      id,
				Position:      p.Local.Position,
				HasDirection:  p.Remote.HasDirection,
				Direction:     p.Remote.Direction,
				LookDirection: p.Remote.LookDirection,
			})
		}
	}

	// Structural removal happens after the loop above so a single pass
	// over state.Players never mutates the map it's ranging over, and so
	// every player still gets one interpolation step on the tick they
	// cross a portal.
	for id, p := range state.Players {
		if p.PendingTransfer != nil {
			delete(state.Players, id)
		}
	}

	RunMobAI(state, w, elapsedSeconds)
	ProcessRespawns(state, w)
	HealPlayers(state, w)
}
