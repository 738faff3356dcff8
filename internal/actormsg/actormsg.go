// Package actormsg holds the message types passed between the session,
// root, and room actors. Pulled into its own package (mirroring
// phuhao00-suigserver's internal/actor/messages) so room and root actors
// can each depend on the message shapes without depending on each other.
package actormsg

import (
	"github.com/asynkron/protoactor-go/actor"

	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
)

// Connect is sent once by a session, straight after its handshake and
// reader loop start, to register the connection with the root actor.
type Connect struct {
	PlayerID   object.ID
	Connection *actor.PID
}

// Disconnect is sent once by a session when its connection ends.
type Disconnect struct {
	PlayerID object.ID
}

// Command carries one decoded client command up to the root actor. RoomID
// is the zero value for global commands (currently just Ping).
type Command struct {
	PlayerID object.ID
	RoomID   object.RoomID
	Command  protocol.Command
}

// PlayerConnected is sent by the root actor to a room actor to admit a
// player who has been assigned to it.
type PlayerConnected struct {
	PlayerID      object.ID
	Connection    *actor.PID
	SpawnPosition geom.Vec2
}

// PlayerDisconnected is sent by the root actor to a room actor to remove a
// player, whether from a real disconnect or because they left via a portal.
type PlayerDisconnected struct {
	PlayerID object.ID
}

// PlayerCommand is sent by the root actor to a room actor: a room-scoped
// command already checked against the player's current room assignment.
type PlayerCommand struct {
	PlayerID object.ID
	Command  protocol.Command
}

// PlayerLeftRoom is sent by a room actor to the root actor when one of its
// players crosses a portal and needs reassigning to another room.
type PlayerLeftRoom struct {
	PlayerID       object.ID
	TargetRoom     object.RoomID
	TargetPosition geom.Vec2
}
