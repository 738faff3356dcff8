// Package roomstate defines a room's mutable simulation state: players,
// mobs, and the outbound writer buffer. A RoomState is only ever touched
// from its owning room actor's single goroutine, so nothing here takes a
// lock.
package roomstate

import (
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"github.com/tilekeeper/server/internal/direction"
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/mobtemplate"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/serverctx"
	"github.com/tilekeeper/server/internal/worldmap"
)

// PlayerConnection is the PID of the session actor holding a player's
// websocket write half. Room actors address it like any other actor.
type PlayerConnection = *actor.PID

// LocalMovement is the authoritative, server-interpolated position the room
// simulates a player or mob at.
type LocalMovement struct {
	Position geom.Vec2
}

// RemoteMovement is the last movement intent declared over the wire: a
// position, an optional direction of travel, and a separate look direction
// (a stationary player can still face a direction).
type RemoteMovement struct {
	Position      geom.Vec2
	HasDirection  bool
	Direction     direction.Direction4
	LookDirection direction.Direction4
	DeclaredAt    time.Time
}

// Interpolate projects where Remote has carried its subject to by now:
// Position plus Direction at velocity for the time elapsed since DeclaredAt.
// A stale DeclaredAt keeps advancing the projected position every call,
// unlike a fixed per-tick delta from an unmoving anchor.
func (r RemoteMovement) Interpolate(now time.Time, velocity float32) geom.Vec2 {
	if !r.HasDirection {
		return r.Position
	}
	elapsed := float32(now.Sub(r.DeclaredAt).Seconds())
	return r.Position.Add(r.Direction.Vector().Scale(velocity * elapsed))
}

// Player is one connected player's state within a room.
type Player struct {
	ID         object.ID
	Connection PlayerConnection

	Local  LocalMovement
	Remote RemoteMovement

	Velocity float32

	Health    int32
	MaxHealth int32

	LastDamagedAtTick object.Tick

	// PendingRoomID, when non-zero-valued alongside PendingSet, marks that
	// this player crossed a portal this tick and is awaiting removal after
	// the writer flush (the room must not emit ObjectDisappeared for a
	// portal transition — RoomEntered in the target room is the signal).
	PendingTransfer *PortalTransfer
}

// PortalTransfer records a player's pending handoff to another room.
type PortalTransfer struct {
	TargetRoom     object.RoomID
	TargetPosition geom.Vec2
}

// Mob is one simulated hostile's state within a room.
type Mob struct {
	ID       object.ID
	Template *mobtemplate.Template
	Spawn    worldmap.MobSpawn

	Movement RemoteMovement

	Health int32

	AttackTargetID  object.ID
	HasAttackTarget bool

	LastAttackTick object.Tick
}

// MobRespawn schedules a dead mob's reincarnation.
type MobRespawn struct {
	Spawn     worldmap.MobSpawn
	RespawnAt object.Tick
}

// RoomState is everything one room actor owns.
type RoomState struct {
	Ctx *serverctx.Context
	Map *worldmap.RoomMap

	Players map[object.ID]*Player
	Mobs    []*Mob

	Respawns []MobRespawn

	CurrentTick object.Tick
}

// New builds an empty RoomState for m, ready to have mobs populated into it.
func New(ctx *serverctx.Context, m *worldmap.RoomMap) *RoomState {
	return &RoomState{
		Ctx:     ctx,
		Map:     m,
		Players: make(map[object.ID]*Player),
	}
}

// PlayerVelocity is the configured movement speed shared by every player.
func (s *RoomState) PlayerVelocity() float32 {
	return s.Ctx.Config.PlayerVelocity
}
