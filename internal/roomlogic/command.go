package roomlogic

import (
	"time"

	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
	"github.com/tilekeeper/server/internal/roomstate"
)

// HandleMove applies a declared movement intent: the remote movement record
// is updated unconditionally, but the position only commits if it doesn't
// land in a blocked tile; otherwise the player (and everyone else) is told
// the corrected, still-valid position.
func HandleMove(state *roomstate.RoomState, w *roomstate.Writer, playerID object.ID, cmd protocol.MoveCommand, now time.Time) {
	p, ok := state.Players[playerID]
	if !ok {
		return
	}

	p.Remote = roomstate.RemoteMovement{
		Position:      cmd.Position,
		HasDirection:  cmd.HasDirection,
		Direction:     cmd.Direction,
		LookDirection: cmd.LookDirection,
		DeclaredAt:    now,
	}

	if state.Map.CollisionAt(cmd.Position) {
		preventPlayerCollision(w, p)
		return
	}

	p.Local.Position = cmd.Position
	w.BroadcastExcept(playerID, protocol.ObjectMovementChangedEvent{
		ObjectID:      playerID,
		Position:      p.Local.Position,
		HasDirection:  p.Remote.HasDirection,
		Direction:     p.Remote.Direction,
		LookDirection: p.Remote.LookDirection,
	})
}

// preventPlayerCollision snaps a player back to their last valid position
// and broadcasts the correction to everyone, including the offender — they
// need the correction more than anyone.
func preventPlayerCollision(w *roomstate.Writer, p *roomstate.Player) {
	w.Broadcast(protocol.ObjectMovementChangedEvent{
		ObjectID:      p.ID,
		Position:      p.Local.Position,
		HasDirection:  false,
		Direction:     p.Remote.Direction,
		LookDirection: p.Remote.LookDirection,
	})
}

// HandleAttack plays the swing animation for everyone else and resolves
// damage against any mob the swing reaches.
func HandleAttack(state *roomstate.RoomState, w *roomstate.Writer, playerID object.ID, cmd protocol.AttackCommand) {
	p, ok := state.Players[playerID]
	if !ok {
		return
	}
	w.BroadcastExcept(playerID, protocol.ObjectAnimationActionEvent{ObjectID: playerID, Action: protocol.ActionAttack})
	PlayerAttack(state, w, p)
}
