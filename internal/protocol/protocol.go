// Package protocol implements the wire framing between a player's client and
// this server: a handshake magic, a tagged-opcode command from client to
// server, and a batched, tagged-opcode event envelope from server to client.
//
// There is no compact binary codec library suited to a tight per-tick game
// frame (see DESIGN.md); framing is hand-rolled with encoding/binary, the
// same manual buffer-writer/reader style used elsewhere in this class of
// server for wire framing.
package protocol

import (
	"github.com/tilekeeper/server/internal/animation"
	"github.com/tilekeeper/server/internal/direction"
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
)

// Handshake is the fixed magic every connection must send as its first
// frame before any command is accepted.
var Handshake = [8]byte{'T', 'I', 'L', 'E', 'K', 'P', 'R', '1'}

// ValidHandshake reports whether b is exactly the expected magic.
func ValidHandshake(b []byte) bool {
	if len(b) != len(Handshake) {
		return false
	}
	for i := range Handshake {
		if b[i] != Handshake[i] {
			return false
		}
	}
	return true
}

// Command opcodes, client -> server.
const (
	OpPing   uint8 = 0x01
	OpMove   uint8 = 0x02
	OpAttack uint8 = 0x03
)

// Event opcodes, server -> client.
const (
	OpInitial               uint8 = 0x10
	OpPong                  uint8 = 0x11
	OpRoomEntered           uint8 = 0x12
	OpObjectAppeared        uint8 = 0x13
	OpObjectDisappeared     uint8 = 0x14
	OpObjectMovementChanged uint8 = 0x15
	OpObjectAnimationAction uint8 = 0x16
	OpObjectHealthChanged   uint8 = 0x17
)

// Command is one decoded client -> server message.
type Command interface{ isCommand() }

// PingCommand is the global keepalive/RTT probe.
type PingCommand struct {
	Sequence uint32
}

func (PingCommand) isCommand() {}

// MoveCommand declares the sender's intended movement within a room.
type MoveCommand struct {
	RoomID        object.RoomID
	Position      geom.Vec2
	HasDirection  bool
	Direction     direction.Direction4
	LookDirection direction.Direction4
}

func (MoveCommand) isCommand() {}

// AttackCommand is a melee swing declared within a room.
type AttackCommand struct {
	RoomID object.RoomID
}

func (AttackCommand) isCommand() {}

// Event is one server -> client message.
type Event interface{ isEvent() }

// ClientConfig is the small amount of rendering metadata the server hands
// the client once, at connection time. Asset paths are intentionally
// omitted — asset loading is out of scope.
type ClientConfig struct {
	PlayerVelocity float32
	Animations     animation.Set
}

// InitialEvent is the very first event a connection receives: its own
// object id and rendering configuration.
type InitialEvent struct {
	PlayerID object.ID
	Config   ClientConfig
}

func (InitialEvent) isEvent() {}

// PongEvent answers a PingCommand.
type PongEvent struct {
	Sequence uint32
	SentAt   int64 // unix millis, from the tick source's clock
}

func (PongEvent) isEvent() {}

// RoomEnteredEvent is sent once, right after a player (re)joins a room; it
// is the authoritative signal of room transition (the source room never
// sends ObjectDisappeared for the player leaving it).
type RoomEnteredEvent struct {
	Room RoomSync
}

func (RoomEnteredEvent) isEvent() {}

// ObjectAppearedEvent announces a newly-visible object (player or mob).
type ObjectAppearedEvent struct {
	ObjectID    object.ID
	AnimationID uint32
	Velocity    float32
	Position    geom.Vec2
}

func (ObjectAppearedEvent) isEvent() {}

// ObjectDisappearedEvent announces an object leaving visibility
// (disconnect, or death without respawn-in-room).
type ObjectDisappearedEvent struct {
	ObjectID object.ID
}

func (ObjectDisappearedEvent) isEvent() {}

// ObjectMovementChangedEvent updates an object's declared movement: a fresh
// position plus the (optional) direction of travel and separate look
// direction.
type ObjectMovementChangedEvent struct {
	ObjectID      object.ID
	Position      geom.Vec2
	HasDirection  bool
	Direction     direction.Direction4
	LookDirection direction.Direction4
}

func (ObjectMovementChangedEvent) isEvent() {}

// AnimationAction names a one-shot animation to play, decoupled from
// movement.
type AnimationAction uint8

const (
	ActionAttack AnimationAction = iota
)

// ObjectAnimationActionEvent plays a one-shot animation on an object.
type ObjectAnimationActionEvent struct {
	ObjectID object.ID
	Action   AnimationAction
}

func (ObjectAnimationActionEvent) isEvent() {}

// ObjectHealthChangedEvent reports an object's new health and the signed
// delta that produced it (negative for damage, positive for healing).
type ObjectHealthChangedEvent struct {
	ObjectID object.ID
	Health   int32
	Change   int32
}

func (ObjectHealthChangedEvent) isEvent() {}
