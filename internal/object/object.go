// Package object defines the opaque identifiers shared across a room: object
// ids, room ids, and the tick counter.
package object

import "sync/atomic"

// ID identifies a player or mob within the simulation. Ids are minted once,
// monotonically, and never reused.
type ID uint64

// RoomID identifies a room. Room 0 is the default spawn room.
type RoomID uint64

// Tick counts fixed-interval simulation steps since the tick source started.
type Tick uint32

var nextID atomic.Uint64

// NextID mints a fresh, process-unique object id.
func NextID() ID {
	return ID(nextID.Add(1))
}
